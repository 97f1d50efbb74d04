package middleware

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/router"
)

// Logging provides basic logging without colors.
func Logging(next router.Handler) router.Handler {
	return handler(func(ctx context.Context, r *request.Request) outcome {
		method, target := r.Method, r.Target
		now := time.Now()
		out := next.Call(ctx, r)
		log.Printf("%s %s %s in %s\n", method, target, statusLabel(out), time.Since(now))
		return out
	})
}

// LoggingColored provides colored logging.
func LoggingColored(next router.Handler) router.Handler {
	methodStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true).Background(lipgloss.Color("12")).Width(8).Align(lipgloss.Center)

	return handler(func(ctx context.Context, r *request.Request) outcome {
		method, target := r.Method, r.Target
		now := time.Now()
		out := next.Call(ctx, r)

		code, _ := statusOf(out)
		styledStatus := getStatusCodeStyle(int(code)).Render(statusLabel(out))
		styledMethod := methodStyle.Render(method)

		log.Printf("%s %s %s in %s\n", styledMethod, target, styledStatus, time.Since(now))
		return out
	})
}

// statusLabel is the status code of a reply or failure, or "next" when
// the request was declined.
func statusLabel(out outcome) string {
	code, ok := statusOf(out)
	if !ok {
		return "next"
	}
	return fmt.Sprintf("%d", code)
}

// getStatusCodeStyle returns a lipgloss style for HTTP status codes
func getStatusCodeStyle(statusCode int) lipgloss.Style {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	case statusCode >= 300 && statusCode < 400:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	case statusCode >= 400 && statusCode < 500:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	case statusCode >= 500:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	default:
		// declined, nothing written yet
		return lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	}
}

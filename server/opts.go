package server

import (
	"errors"
	"log"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/router"
)

type ServerOpts struct {
	// The address for the server to listen on. Default ":42069".
	Address string

	// ReadTimeout, WriteTimeout and IdleTimeout are passed to http.Server.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// ShutdownTimeout bounds how long Close waits for in-flight requests.
	// Default 10s.
	ShutdownTimeout time.Duration

	// MaxBodyBytes limits request bodies; reading past it fails with
	// request.ErrBodyTooLarge. Zero means no limit.
	MaxBodyBytes int64

	// NotFound answers requests the service declined. Default is a plain
	// 404. If NotFound declines as well, the 404 is written anyway.
	NotFound router.Handler

	// ErrorResponse turns a failure into the response written to the
	// client. Default is defaultErrorResponse.
	ErrorResponse func(err error) response.Response

	// Recovery function takes the return value of the recover() call as
	// input and returns a response that is written instead.
	Recovery func(any) response.Response

	// Logger receives failures and write errors. Default slog.Default().
	Logger *slog.Logger
}

var defaultRecovery = func(r any) response.Response {
	log.Println("recovered from panic:", r)
	debug.PrintStack()
	return response.NewStatusResponse(response.StatusInternalServerError)
}

// defaultErrorResponse answers with the status of a *router.Error, or 500.
// Client errors carry their message; server errors only the reason phrase.
func defaultErrorResponse(err error) response.Response {
	status := response.StatusInternalServerError
	var rerr *router.Error
	switch {
	case errors.As(err, &rerr):
		status = rerr.Status
	case errors.Is(err, request.ErrBodyTooLarge):
		status = response.StatusPayloadTooLarge
	}
	if status.IsError() && status < response.StatusInternalServerError && rerr != nil && rerr.Err != nil {
		return response.NewTextResponse(rerr.Err.Error()).WithStatusCode(status)
	}
	return response.NewStatusResponse(status)
}

func (o *ServerOpts) applyDefaults() {
	if o.Recovery == nil {
		o.Recovery = defaultRecovery
	}
	if o.Address == "" {
		o.Address = ":42069"
	}
	if o.ShutdownTimeout == 0 {
		o.ShutdownTimeout = 10 * time.Second
	}
	if o.ErrorResponse == nil {
		o.ErrorResponse = defaultErrorResponse
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

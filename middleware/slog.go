package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/router"
	"github.com/shravanasati/relay/service"
)

// Logger logs every request that passes through with slog.
func Logger(logger *slog.Logger) router.Middleware {
	return func(next router.Handler) router.Handler {
		return handler(func(ctx context.Context, r *request.Request) outcome {
			start := time.Now()
			method, path, remote := r.Method, r.Path(), r.RemoteAddr

			out := next.Call(ctx, r)

			attrs := []any{
				"method", method,
				"path", path,
				"remote", remote,
				"outcome", out.Kind().String(),
				"duration", time.Since(start).String(),
			}
			if code, ok := statusOf(out); ok {
				attrs = append(attrs, "status", int(code))
			}
			if err := out.Err(); err != nil {
				logger.Warn("request", append(attrs, "error", err.Error())...)
				return out
			}
			logger.Info("request", attrs...)
			return out
		})
	}
}

// Recoverer turns a panic in the wrapped service into a 500 failure and
// logs it. If includeStack is true, full stack traces are logged. In
// production, set includeStack to false to keep traces out of logs that may
// be exposed.
func Recoverer(logger *slog.Logger, includeStack bool) router.Middleware {
	return func(next router.Handler) router.Handler {
		return handler(func(ctx context.Context, r *request.Request) (out outcome) {
			target, remote := r.Target, r.RemoteAddr
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				attrs := []any{
					slog.Any("panic", rvr),
					slog.String("target", target),
					slog.String("remote_addr", remote),
				}
				if includeStack {
					attrs = append(attrs, slog.String("stack", string(debug.Stack())))
				}
				logger.Error("panic recovered", attrs...)

				out = service.Failure[response.Response, *request.Request](
					router.NewError(response.StatusInternalServerError, fmt.Errorf("panic: %v", rvr)),
				)
			}()
			return next.Call(ctx, r)
		})
	}
}

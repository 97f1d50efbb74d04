package filters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strconv"
	"unicode/utf8"

	"github.com/shravanasati/relay/extract"
	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/router"
	"github.com/shravanasati/relay/service"
)

var (
	// ErrInvalidUTF8 is wrapped by Text when the body is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("body is not valid UTF-8")
	// ErrUnsupportedMediaType is wrapped when a body has the wrong content type.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
)

func badRequest(format string, args ...any) *router.Error {
	return router.Errorf(response.StatusBadRequest, format, args...)
}

// bodyError maps a body read error to the status a client should see.
func bodyError(err error) *router.Error {
	if errors.Is(err, request.ErrBodyTooLarge) {
		return router.NewError(response.StatusPayloadTooLarge, err)
	}
	return badRequest("read body: %w", err)
}

// ContentLengthLimit fails with 413 when the declared content length is
// above limit, before anything reads the body.
func ContentLengthLimit(limit int64) Filter {
	return service.ServiceFunc[*request.Request, extract.Extract[*request.Request, extract.Unit]](
		func(_ context.Context, r *request.Request) service.Outcome[extract.Extract[*request.Request, extract.Unit], *request.Request] {
			if cl := r.Headers.Get("content-length"); cl != "" {
				n, err := strconv.ParseInt(cl, 10, 64)
				if err != nil {
					return service.Failure[extract.Extract[*request.Request, extract.Unit], *request.Request](
						badRequest("invalid content-length %q", cl))
				}
				if n > limit {
					return service.Failure[extract.Extract[*request.Request, extract.Unit], *request.Request](
						router.Errorf(response.StatusPayloadTooLarge, "content-length %d is over limit %d", n, limit))
				}
			}
			return extract.New(r, extract.Unit{}).IntoOutcome()
		})
}

// Bytes extracts the whole body.
func Bytes() Extractor[[]byte] {
	return extract.Func(func(_ context.Context, r *request.Request) ([]byte, error) {
		b, err := r.Body()
		if err != nil {
			return nil, bodyError(err)
		}
		return b, nil
	})
}

// Text extracts the body as a string. A body that is not valid UTF-8 fails
// with 400.
func Text() Extractor[string] {
	return extract.Func(func(_ context.Context, r *request.Request) (string, error) {
		b, err := r.Body()
		if err != nil {
			return "", bodyError(err)
		}
		if !utf8.Valid(b) {
			return "", router.NewError(response.StatusBadRequest, ErrInvalidUTF8)
		}
		return string(b), nil
	})
}

// requireContentType fails with 415 when the request declares a content
// type other than want. A request without a content type is accepted.
func requireContentType(r *request.Request, want string) error {
	ct := r.Headers.Get("content-type")
	if ct == "" {
		return nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil || mt != want {
		return router.NewError(response.StatusUnsupportedMediaType, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, ct))
	}
	return nil
}

// JSON decodes the body as JSON into a T.
func JSON[T any]() Extractor[T] {
	return extract.Func(func(_ context.Context, r *request.Request) (T, error) {
		var v T
		if err := requireContentType(r, "application/json"); err != nil {
			return v, err
		}
		b, err := r.Body()
		if err != nil {
			return v, bodyError(err)
		}
		if err := json.Unmarshal(b, &v); err != nil {
			return v, badRequest("decode json: %w", err)
		}
		return v, nil
	})
}

// Form decodes an application/x-www-form-urlencoded body.
func Form() Extractor[url.Values] {
	return extract.Func(func(_ context.Context, r *request.Request) (url.Values, error) {
		if err := requireContentType(r, "application/x-www-form-urlencoded"); err != nil {
			return nil, err
		}
		b, err := r.Body()
		if err != nil {
			return nil, bodyError(err)
		}
		values, err := url.ParseQuery(string(b))
		if err != nil {
			return nil, badRequest("decode form: %w", err)
		}
		return values, nil
	})
}

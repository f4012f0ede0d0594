// Package apierror maps application errors onto HTTP responses. Every error
// body has the shape {"error": "message"}; the status code never reaches
// the JSON payload.
package apierror

import (
	"context"
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"
)

// Error is an HTTP-mapped application error.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New builds an error with an explicit status code.
func New(code int, msg string) *Error {
	if msg == "" {
		msg = http.StatusText(code)
	}
	return &Error{Code: code, Message: msg}
}

// BadRequest flags invalid request input.
func BadRequest(msg string) *Error {
	return New(http.StatusBadRequest, msg)
}

// NotFound flags a missing resource.
func NotFound(msg string) *Error {
	return New(http.StatusNotFound, msg)
}

// Internal flags a server-side failure. The message is returned to the
// client, so callers must not put internals in it.
func Internal(msg string) *Error {
	return New(http.StatusInternalServerError, msg)
}

// envelope is the wire shape of every error response. It must not
// implement error: httpx writes error-typed bodies as plain text.
type envelope struct {
	Error string `json:"error"`
}

// Handler converts handler errors into status/body pairs. Wire it in via
// httpx.SetErrorHandlerCtx. Unknown errors are logged and collapsed into a
// generic 500 so internals never leak to clients.
func Handler(ctx context.Context, err error) (int, any) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code, envelope{Error: appErr.Message}
	}
	logx.WithContext(ctx).Errorf("api: unhandled error: %v", err)
	return http.StatusInternalServerError, envelope{Error: "internal server error"}
}

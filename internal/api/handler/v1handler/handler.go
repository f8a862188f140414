// Package v1handler implements the v1 HTTP API of the calculator service:
// session lifecycle and key presses, encoded as JSON.
package v1handler

import (
	"context"
	"net/http"

	"calculator/internal/session"
	"calculator/pkg/controller"
	"calculator/pkg/display"
	"calculator/pkg/logger"
	"calculator/pkg/serrors"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// Deps are the collaborators of the v1 handlers.
type Deps struct {
	Sessions session.Manager
	Renderer display.Renderer
	// MaxBodyBytes caps request bodies. Zero selects DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// DefaultMaxBodyBytes is the request body limit used when Deps leaves it unset.
const DefaultMaxBodyBytes = 64 << 10

type Handler struct {
	deps Deps
}

func New(deps Deps) *Handler {
	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return &Handler{deps: deps}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code      string
	Message   string
	RequestID string
}

// Encode writes the response as a JSON object.
func (r ErrorResponse) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Str(r.Code) })
		e.Field("message", func(e *jx.Encoder) { e.Str(r.Message) })
		if r.RequestID != "" {
			e.Field("requestId", func(e *jx.Encoder) { e.Str(r.RequestID) })
		}
	})
}

// ErrorStatusCode pairs an ErrorResponse with its HTTP status.
type ErrorStatusCode struct {
	StatusCode int
	Response   ErrorResponse
}

type errorClass struct {
	kind    serrors.Kind
	status  int
	message string
}

// errorClasses lists the semantic kinds in match order with their status and
// the message used when the error carries none.
var errorClasses = []errorClass{ //nolint: gochecknoglobals
	{serrors.ErrNotFound, http.StatusNotFound, "resource not found"},
	{serrors.ErrBadRequest, http.StatusBadRequest, "bad request"},
	{serrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{serrors.ErrTimeout, http.StatusGatewayTimeout, "request timed out"},
	{serrors.ErrUnavailable, http.StatusServiceUnavailable, "service unavailable"},
}

// NewError converts err into the response sent to the client. Semantic errors
// keep their message; anything else is logged and reported as internal.
func (h Handler) NewError(ctx context.Context, err error) *ErrorStatusCode {
	res := &ErrorStatusCode{Response: ErrorResponse{RequestID: controller.GetRequestID(ctx)}}

	if errors.Is(err, context.DeadlineExceeded) {
		err = serrors.Wrap(serrors.ErrTimeout, err, "request timed out")
	}

	kind := serrors.KindOf(err)
	for _, c := range errorClasses {
		if kind != c.kind {
			continue
		}
		res.StatusCode = c.status
		res.Response.Code = c.kind.Error()
		res.Response.Message = serrors.MessageOf(err)
		if res.Response.Message == "" {
			res.Response.Message = c.message
		}
		logger.Debug(ctx, "request failed", zap.Error(err))

		return res
	}

	logger.Error(ctx, "internal error", zap.Error(err))
	res.StatusCode = http.StatusInternalServerError
	res.Response.Code = serrors.ErrInternal.Error()
	res.Response.Message = "internal error"

	return res
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func (h Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	res := h.NewError(r.Context(), err)
	writeJSON(w, res.StatusCode, res.Response.Encode)
}

// NotFound answers requests that match no route.
func (h Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, serrors.With(serrors.ErrNotFound, "no route for %s %s", r.Method, r.URL.Path))
}

// MethodNotAllowed answers requests whose path matches but whose method does not.
func (h Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	res := h.NewError(r.Context(), serrors.With(serrors.ErrBadRequest, "method %s not allowed", r.Method))
	res.StatusCode = http.StatusMethodNotAllowed
	writeJSON(w, res.StatusCode, res.Response.Encode)
}

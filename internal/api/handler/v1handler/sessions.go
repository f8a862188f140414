package v1handler

import (
	"io"
	"net/http"
	"time"

	"calculator/internal/keymap"
	"calculator/pkg/domain"
	"calculator/pkg/serrors"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/gorilla/mux"
)

// EncodeSession writes the JSON form of s. The display block is what a keypad
// UI shows; the state block is the raw machine state.
func (h Handler) EncodeSession(e *jx.Encoder, s *domain.Session) {
	screen := h.deps.Renderer.Render(s.State)

	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(s.ID.String()) })
		e.Field("display", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("current", func(e *jx.Encoder) { e.Str(screen.Current) })
				e.Field("previous", func(e *jx.Encoder) { e.Str(screen.Previous) })
			})
		})
		e.Field("state", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("current", func(e *jx.Encoder) { e.Str(s.State.Current) })
				e.Field("previous", func(e *jx.Encoder) { e.Str(s.State.Previous) })
				e.Field("operation", func(e *jx.Encoder) { e.Str(s.State.Operation.String()) })
				e.Field("resetPending", func(e *jx.Encoder) { e.Bool(s.State.ResetPending) })
				e.Field("error", func(e *jx.Encoder) { e.Bool(s.State.HasError()) })
			})
		})
		e.Field("inputs", func(e *jx.Encoder) { e.UInt64(uint64(s.Inputs)) })
		e.Field("createdAt", func(e *jx.Encoder) { e.Str(s.CreatedAt.UTC().Format(time.RFC3339Nano)) })
		e.Field("updatedAt", func(e *jx.Encoder) { e.Str(s.UpdatedAt.UTC().Format(time.RFC3339Nano)) })
	})
}

func (h Handler) writeSession(w http.ResponseWriter, status int, s *domain.Session) {
	writeJSON(w, status, func(e *jx.Encoder) { h.EncodeSession(e, s) })
}

func sessionIDFromPath(r *http.Request) (domain.SessionID, error) {
	id, err := domain.ParseSessionID(mux.Vars(r)["id"])
	if err != nil {
		return domain.SessionID{}, serrors.Wrap(serrors.ErrNotFound, err, "session not found")
	}

	return id, nil
}

// DecodeKeys reads a press request body of the form {"keys": ["1", "+"]}.
// Unknown fields are ignored.
func DecodeKeys(body []byte) ([]string, error) {
	var keys []string
	seen := false

	d := jx.DecodeBytes(body)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) != "keys" {
			return d.Skip() //nolint: wrapcheck
		}
		seen = true

		return d.Arr(func(d *jx.Decoder) error { //nolint: wrapcheck
			k, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "key")
			}
			keys = append(keys, k)

			return nil
		})
	})
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body")
	}
	if !seen {
		return nil, serrors.With(serrors.ErrBadRequest, "invalid request body: missing keys")
	}

	return keys, nil
}

// CreateSession opens a new calculator session for the caller.
func (h Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.deps.Sessions.Create(r.Context(), GetUserIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	w.Header().Set("Location", "/v1/sessions/"+s.ID.String())
	h.writeSession(w, http.StatusCreated, s)
}

// GetSession returns a session by ID.
func (h Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionIDFromPath(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	s, err := h.deps.Sessions.Get(r.Context(), GetUserIDFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	h.writeSession(w, http.StatusOK, s)
}

// PressKeys applies the keys in the request body to a session and returns the
// resulting session.
func (h Handler) PressKeys(w http.ResponseWriter, r *http.Request) {
	id, err := sessionIDFromPath(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.deps.MaxBodyBytes))
	if err != nil {
		h.writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "could not read request body"))

		return
	}

	keys, err := DecodeKeys(body)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	inputs, err := keymap.ParseKeys(keys)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	s, err := h.deps.Sessions.Press(r.Context(), GetUserIDFromContext(r.Context()), id, inputs)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	h.writeSession(w, http.StatusOK, s)
}

// DeleteSession closes a session.
func (h Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionIDFromPath(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	if err := h.deps.Sessions.Delete(r.Context(), GetUserIDFromContext(r.Context()), id); err != nil {
		h.writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Routes registers the v1 endpoints on r. Every route runs behind sec.
func (h Handler) Routes(r *mux.Router, sec *SecHandler) {
	r.Use(sec.Middleware)
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.MethodNotAllowed)

	r.HandleFunc("/sessions", h.CreateSession).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}", h.GetSession).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}", h.DeleteSession).Methods(http.MethodDelete)
	r.HandleFunc("/sessions/{id}/keys", h.PressKeys).Methods(http.MethodPost)
}

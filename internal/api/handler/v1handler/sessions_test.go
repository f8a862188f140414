package v1handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"calculator/internal/api/handler/v1handler"
	"calculator/internal/session"
	mocksession "calculator/internal/session/mock"
	"calculator/pkg/calculator"
	"calculator/pkg/display"
	"calculator/pkg/domain"
	"calculator/pkg/serrors"
	"calculator/pkg/storage/memory"

	"github.com/go-faster/jx"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newRouter(t *testing.T, sessions session.Manager) http.Handler {
	t.Helper()

	grouped, err := display.NewGrouped("en-US")
	require.NoError(t, err)

	sec, err := v1handler.NewSecHandler(&v1handler.SecHandlerOptions{})
	require.NoError(t, err)

	h := v1handler.New(v1handler.Deps{
		Sessions: sessions,
		Renderer: display.NewRenderer(grouped),
	})

	r := mux.NewRouter()
	h.Routes(r.PathPrefix("/v1").Subrouter(), sec)

	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

// field extracts a dotted path of string or bool fields from a JSON object.
func field(t *testing.T, body []byte, path string) string {
	t.Helper()

	parts := strings.Split(path, ".")
	var value string
	var walk func(d *jx.Decoder, depth int) error
	walk = func(d *jx.Decoder, depth int) error {
		return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
			if string(key) != parts[depth] {
				return d.Skip()
			}
			if depth < len(parts)-1 {
				return walk(d, depth+1)
			}
			if d.Next() == jx.String {
				v, err := d.Str()
				value = v

				return err
			}
			raw, err := d.Raw()
			value = raw.String()

			return err
		})
	}
	require.NoError(t, walk(jx.DecodeBytes(body), 0))

	return value
}

func TestCreateSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessions := mocksession.NewMockManager(ctrl)

	s := &domain.Session{
		ID:        domain.NewSessionID(),
		Owner:     domain.AnonymousUser,
		State:     calculator.InitialState(),
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	sessions.EXPECT().Create(gomock.Any(), domain.AnonymousUser).Return(s, nil)

	rec := do(t, newRouter(t, sessions), http.MethodPost, "/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "/v1/sessions/"+s.ID.String(), rec.Header().Get("Location"))

	body := rec.Body.Bytes()
	require.Equal(t, s.ID.String(), field(t, body, "id"))
	require.Equal(t, "0", field(t, body, "display.current"))
	require.Equal(t, "", field(t, body, "display.previous"))
	require.Equal(t, "none", field(t, body, "state.operation"))
	require.Equal(t, "false", field(t, body, "state.error"))
	require.Equal(t, "2025-01-02T03:04:05Z", field(t, body, "createdAt"))
}

func TestGetSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessions := mocksession.NewMockManager(ctrl)

	id := domain.NewSessionID()
	s := &domain.Session{
		ID: id,
		State: calculator.State{
			Current:   "2500.5",
			Previous:  "1234567",
			Operation: calculator.Multiply,
		},
	}
	sessions.EXPECT().Get(gomock.Any(), domain.AnonymousUser, id).Return(s, nil)

	rec := do(t, newRouter(t, sessions), http.MethodGet, "/v1/sessions/"+id.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.Bytes()
	require.Equal(t, "2,500.5", field(t, body, "display.current"))
	require.Equal(t, "1,234,567 ×", field(t, body, "display.previous"))
	require.Equal(t, "2500.5", field(t, body, "state.current"))
	require.Equal(t, "multiply", field(t, body, "state.operation"))
}

func TestGetSession_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessions := mocksession.NewMockManager(ctrl)

	id := domain.NewSessionID()
	sessions.EXPECT().Get(gomock.Any(), gomock.Any(), id).
		Return(nil, serrors.With(serrors.ErrNotFound, "session not found"))

	rec := do(t, newRouter(t, sessions), http.MethodGet, "/v1/sessions/"+id.String(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", field(t, rec.Body.Bytes(), "code"))
	require.Equal(t, "session not found", field(t, rec.Body.Bytes(), "message"))
}

func TestGetSession_MalformedID(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessions := mocksession.NewMockManager(ctrl)

	rec := do(t, newRouter(t, sessions), http.MethodGet, "/v1/sessions/not-a-uuid", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPressKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessions := mocksession.NewMockManager(ctrl)

	id := domain.NewSessionID()
	want := []calculator.Input{
		calculator.DigitInput('3'),
		calculator.OperatorInput(calculator.Add),
		calculator.DigitInput('4'),
		calculator.Press(calculator.InputEquals),
	}
	sessions.EXPECT().Press(gomock.Any(), domain.AnonymousUser, id, want).
		Return(&domain.Session{ID: id, State: calculator.State{Current: "7", ResetPending: true}}, nil)

	rec := do(t, newRouter(t, sessions), http.MethodPost, "/v1/sessions/"+id.String()+"/keys",
		`{"keys":["3","+","4","Enter"],"comment":{"ignored":[1,2]}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "7", field(t, rec.Body.Bytes(), "display.current"))
	require.Equal(t, "true", field(t, rec.Body.Bytes(), "state.resetPending"))
}

func TestPressKeys_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `keys=1`},
		{name: "missing keys", body: `{"other":[]}`},
		{name: "keys not strings", body: `{"keys":[1,2]}`},
		{name: "unknown key", body: `{"keys":["1","F1"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			sessions := mocksession.NewMockManager(ctrl)

			rec := do(t, newRouter(t, sessions), http.MethodPost,
				"/v1/sessions/"+domain.NewSessionID().String()+"/keys", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, "BAD_REQUEST", field(t, rec.Body.Bytes(), "code"))
		})
	}
}

func TestPressKeys_BodyTooLarge(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessions := mocksession.NewMockManager(ctrl)

	h := v1handler.New(v1handler.Deps{Sessions: sessions, MaxBodyBytes: 16})
	sec, err := v1handler.NewSecHandler(nil)
	require.NoError(t, err)
	r := mux.NewRouter()
	h.Routes(r.PathPrefix("/v1").Subrouter(), sec)

	rec := do(t, r, http.MethodPost, "/v1/sessions/"+domain.NewSessionID().String()+"/keys",
		`{"keys":["1","2","3","4","5","6"]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessions := mocksession.NewMockManager(ctrl)

	id := domain.NewSessionID()
	sessions.EXPECT().Delete(gomock.Any(), domain.AnonymousUser, id).Return(nil)

	rec := do(t, newRouter(t, sessions), http.MethodDelete, "/v1/sessions/"+id.String(), "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())
}

func TestRoutes_UnknownPathAndMethod(t *testing.T) {
	ctrl := gomock.NewController(t)
	router := newRouter(t, mocksession.NewMockManager(ctrl))

	rec := do(t, router, http.MethodGet, "/v1/nothing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPut, "/v1/sessions", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSessionsEndToEnd(t *testing.T) {
	st := memory.New(t.Context(), memory.Options{})
	t.Cleanup(func() { _ = st.Close() })
	router := newRouter(t, session.New(session.Deps{Storage: st}, session.Options{}))

	rec := do(t, router, http.MethodPost, "/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id := field(t, rec.Body.Bytes(), "id")

	press := func(keys string) []byte {
		rec := do(t, router, http.MethodPost, "/v1/sessions/"+id+"/keys", `{"keys":`+keys+`}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		return rec.Body.Bytes()
	}

	body := press(`["1","2","3","4","*"]`)
	require.Equal(t, "0", field(t, body, "display.current"))
	require.Equal(t, "1,234 ×", field(t, body, "display.previous"))

	body = press(`["1","0","0","0","Enter"]`)
	require.Equal(t, "1,234,000", field(t, body, "display.current"))
	require.Equal(t, "", field(t, body, "display.previous"))

	body = press(`["/","0","="]`)
	require.Equal(t, calculator.ErrorDisplay, field(t, body, "display.current"))
	require.Equal(t, "true", field(t, body, "state.error"))

	body = press(`["Escape"]`)
	require.Equal(t, "0", field(t, body, "display.current"))

	rec = do(t, router, http.MethodDelete, "/v1/sessions/"+id, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/sessions/"+id, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

package v1handler

import (
	"context"
	"crypto/rsa"
	"net/http"
	"strings"

	"calculator/internal/config"
	"calculator/pkg/domain"
	"calculator/pkg/logger"
	"calculator/pkg/serrors"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SecHandlerOptions configures bearer token verification.
type SecHandlerOptions struct {
	// PublicKey is the PEM encoded RSA key that signs tokens. When empty,
	// authentication is disabled and every request runs as domain.AnonymousUser.
	PublicKey string
}

func NewSecHandlerOptions(cfg *config.Config) *SecHandlerOptions {
	return &SecHandlerOptions{PublicKey: cfg.JWT.PublicKey}
}

type ctxKey string

// UserIDKey is the context key holding the authenticated domain.UserID.
const UserIDKey ctxKey = "userID"

// GetUserIDFromContext returns the authenticated user, or domain.AnonymousUser
// when the context carries none.
func GetUserIDFromContext(ctx context.Context) domain.UserID {
	if id, ok := ctx.Value(UserIDKey).(domain.UserID); ok {
		return id
	}

	return domain.AnonymousUser
}

// SecHandler verifies RS256 bearer tokens whose subject is a user UUID.
type SecHandler struct {
	key *rsa.PublicKey
}

func NewSecHandler(opts *SecHandlerOptions) (*SecHandler, error) {
	if opts == nil || strings.TrimSpace(opts.PublicKey) == "" {
		return &SecHandler{}, nil
	}

	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(opts.PublicKey))
	if err != nil {
		return nil, errors.Wrap(err, "parse RSA public key")
	}

	return &SecHandler{key: key}, nil
}

// Enabled reports whether tokens are verified.
func (s SecHandler) Enabled() bool {
	return s.key != nil
}

// HandleBearerAuth verifies token and returns ctx carrying the token's user.
func (s SecHandler) HandleBearerAuth(ctx context.Context, token string) (context.Context, error) {
	if !s.Enabled() {
		return context.WithValue(ctx, UserIDKey, domain.AnonymousUser), nil
	}

	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return ctx, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token")
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token subject")
	}

	ctx = logger.WithFields(ctx, zap.String("userID", id.String()))

	return context.WithValue(ctx, UserIDKey, domain.UserID(id)), nil
}

// Middleware authenticates every request through its Authorization header.
func (s SecHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if s.Enabled() {
			scheme, t, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(t) == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="calculator"`)
				writeUnauthorized(w, r, serrors.With(serrors.ErrUnauthorized, "missing bearer token"))

				return
			}
			token = strings.TrimSpace(t)
		}

		ctx, err := s.HandleBearerAuth(r.Context(), token)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="calculator", error="invalid_token"`)
			writeUnauthorized(w, r, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, err error) {
	Handler{}.writeError(w, r, err)
}

package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/disputedesk/disputedesk-backend/api/responses"
	"github.com/disputedesk/disputedesk-backend/pkg/config"
	pkgerrors "github.com/disputedesk/disputedesk-backend/pkg/errors"
	"github.com/disputedesk/disputedesk-backend/pkg/logger"
)

// DemoUserID is the caller identity used when no JWT secret is configured.
// Every row the API writes is still scoped to it, so swapping in a real
// resolver later changes nothing below the HTTP layer.
const DemoUserID = "demo-user"

// IdentityResolver maps an incoming request to a caller id.
type IdentityResolver interface {
	Resolve(r *http.Request) (string, error)
}

// DemoResolver returns a fixed identity for single-tenant demo deployments.
type DemoResolver struct {
	UserID string
}

func (d DemoResolver) Resolve(_ *http.Request) (string, error) {
	if d.UserID == "" {
		return DemoUserID, nil
	}
	return d.UserID, nil
}

// JWTResolver validates a bearer token and uses its subject as the caller id.
type JWTResolver struct {
	cfg config.JWTConfig
}

func NewJWTResolver(cfg config.JWTConfig) JWTResolver {
	return JWTResolver{cfg: cfg}
}

func (j JWTResolver) Resolve(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	token := raw
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(j.cfg.Secret), nil
	}, jwt.WithIssuer(j.cfg.Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
	}
	return claims.Subject, nil
}

// ResolverFor picks the JWT resolver when a secret is configured, the demo
// resolver otherwise.
func ResolverFor(cfg config.JWTConfig) IdentityResolver {
	if cfg.Enabled() {
		return NewJWTResolver(cfg)
	}
	return DemoResolver{}
}

// Identity resolves the caller and seeds the request context with it.
func Identity(resolver IdentityResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolver.Resolve(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithUserID(r.Context(), userID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

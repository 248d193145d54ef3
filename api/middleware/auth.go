package middleware

import (
	"net/http"
	"strings"

	"github.com/Coco120903/BananaMeow-sub000/api/responses"
	pkgAuth "github.com/Coco120903/BananaMeow-sub000/pkg/auth"
	"github.com/Coco120903/BananaMeow-sub000/pkg/config"
	pkgerrors "github.com/Coco120903/BananaMeow-sub000/pkg/errors"
	"github.com/Coco120903/BananaMeow-sub000/pkg/logger"
)

const bearerPrefix = "bearer "

// Auth verifies the admin bearer token and stores the caller as an Actor.
// The service never issues these tokens; an operator mints them out of band
// with the shared HS256 secret.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin access is not configured"))
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithActor(r.Context(), Actor{Subject: claims.Subject, Role: claims.Role, Email: claims.Email})
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.Subject)
				ctx = logg.WithField(ctx, "actor_role", claims.Role)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) <= len(bearerPrefix) || !strings.EqualFold(raw[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(raw[len(bearerPrefix):])
	return token, token != ""
}

package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/Coco120903/BananaMeow-sub000/api/responses"
	"github.com/Coco120903/BananaMeow-sub000/pkg/config"
	pkgerrors "github.com/Coco120903/BananaMeow-sub000/pkg/errors"
	"github.com/Coco120903/BananaMeow-sub000/pkg/logger"
	"github.com/Coco120903/BananaMeow-sub000/pkg/types"
)

const (
	envHeader    = "X-BananaMeow-Env"
	readyTimeout = 2 * time.Second
)

// Pinger is any dependency that can report its own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, types.HealthStatus{Status: "live"})
	}
}

// HealthReady pings every named dependency; nil entries are reported as disabled.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		var failed error
		for name, dep := range deps {
			if dep == nil {
				checks[name] = "disabled"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = "down"
				if failed == nil {
					failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable").
						WithDetails(map[string]any{"checks": checks})
				}
				continue
			}
			checks[name] = "ok"
		}

		if failed != nil {
			responses.WriteError(r.Context(), logg, w, failed)
			return
		}
		responses.WriteSuccess(w, types.HealthStatus{Status: "ready", Checks: checks})
	}
}

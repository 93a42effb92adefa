package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/licensepro/alvara-backend/api/responses"
	"github.com/licensepro/alvara-backend/pkg/config"
	pkgerrors "github.com/licensepro/alvara-backend/pkg/errors"
	"github.com/licensepro/alvara-backend/pkg/logger"
)

const envHeader = "X-Alvara-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes every hard dependency. Storage is optional: single-box
// installs run without GCS credentials.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, cache, storage pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := []struct {
			name string
			dep  pinger
		}{
			{"database", db},
			{"redis", cache},
			{"storage", storage},
		}
		status := map[string]string{}
		for _, check := range checks {
			name, dep := check.name, check.dep
			if dep == nil {
				status[name] = "skipped"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				status[name] = "down"
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable").WithDetails(status))
				return
			}
			status[name] = "ok"
		}

		status["status"] = "ready"
		responses.WriteSuccess(w, status)
	}
}

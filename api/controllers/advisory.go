package controllers

import (
	"net/http"

	"github.com/licensepro/alvara-backend/api/responses"
	"github.com/licensepro/alvara-backend/internal/advisory"
	pkgerrors "github.com/licensepro/alvara-backend/pkg/errors"
	"github.com/licensepro/alvara-backend/pkg/logger"
)

// AdvisoryGet returns the latest generated summary and whether a newer
// one is still in flight.
func AdvisoryGet(scheduler *advisory.Scheduler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if scheduler == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "advisory unavailable"))
			return
		}
		responses.WriteSuccess(w, scheduler.Snapshot())
	}
}

// AdvisoryRefresh schedules a new analysis. Bursts collapse into one
// model call via the scheduler's debounce window.
func AdvisoryRefresh(scheduler *advisory.Scheduler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if scheduler == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "advisory unavailable"))
			return
		}
		scheduler.Refresh()
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
	}
}

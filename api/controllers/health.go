package controllers

import (
	"net/http"

	"github.com/skumawat/bidkart-backend/api/responses"
	"github.com/skumawat/bidkart-backend/pkg/config"
	"github.com/skumawat/bidkart-backend/pkg/db"
	pkgerrors "github.com/skumawat/bidkart-backend/pkg/errors"
	"github.com/skumawat/bidkart-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BidKart-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the datasource and cache before reporting ready. Nil
// pingers are skipped so workers can reuse the handler.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, cacheP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BidKart-Env", cfg.App.Env)
		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}
		if cacheP != nil {
			if err := cacheP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

package controllers

import (
	"context"
	"net/http"

	"github.com/citycare/storefront/api/responses"
	"github.com/citycare/storefront/pkg/config"
	pkgerrors "github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/logger"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CityCare-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the local store devices persist into.
func HealthReady(cfg *config.Config, logg *logger.Logger, store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CityCare-Env", cfg.App.Env)
		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "local store unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready", "localStore": cfg.LocalStore.Backend})
	}
}

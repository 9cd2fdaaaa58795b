package controllers

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/multierr"

	"github.com/ermiasgashu/suq-backend/api/responses"
	"github.com/ermiasgashu/suq-backend/pkg/config"
	pkgerrors "github.com/ermiasgashu/suq-backend/pkg/errors"
	"github.com/ermiasgashu/suq-backend/pkg/logger"
)

const envHeader = "X-Suq-Env"

// Pinger is a named readiness dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NamedPinger ties a readiness check to its dependency name.
type NamedPinger struct {
	Name   string
	Pinger Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency and reports not-ready if any fails.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps ...NamedPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		var errs error
		for _, dep := range deps {
			if dep.Pinger == nil {
				continue
			}
			if err := dep.Pinger.Ping(r.Context()); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", dep.Name, err))
			}
		}
		if errs != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "dependencies unavailable"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

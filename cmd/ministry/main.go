package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/acapy"
	apperrors "github.com/nomad-at-you/ssi-cbdc-bridging/pkg/app/errors"
	apphttp "github.com/nomad-at-you/ssi-cbdc-bridging/pkg/app/http"
	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/config"
	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/exchange"
	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/issuer"
	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/orchestrator"
	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/webhook"
)

var configPath = flag.String("config", "config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting ministry controller")

	admin, err := acapy.New(acapy.Config{
		AdminURL: cfg.Agent.AdminURL,
		APIKey:   cfg.Agent.APIKey,
		Timeout:  cfg.Agent.Timeout,
	}, acapy.WithLogger(logger.Named("acapy")))
	if err != nil {
		logger.Fatal("Failed to initialize admin client", zap.Error(err))
	}

	session := orchestrator.NewSession(admin, nil, nil, logger.Named("orchestrator"))

	registry := exchange.NewRegistry()
	hooks := webhook.NewRouter(session, registry, logger.Named("webhook"))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-session.ConnectionReady():
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("READY"))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("NOT_READY"))
		}
	})
	if cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	hooks.RegisterRoutes(r)

	r.Route("/actions", func(r chi.Router) {
		r.Post("/offer-identity", apphttp.HandleError(func(w http.ResponseWriter, req *http.Request) error {
			connID := session.ConnectionID()
			if connID == "" {
				return apperrors.BadRequestError(nil, "no counterparty connection")
			}
			if cfg.Issuer.IdentityCredDefID == "" {
				return apperrors.BadRequestError(nil, "credential definition not configured")
			}
			spec := issuer.IdentitySpec(cfg.Issuer.IdentityCredDefID, time.Now(), cfg.Issuer.HolderAge)
			if err := admin.SendCredentialOffer(req.Context(), issuer.BuildOffer(connID, spec)); err != nil {
				return apperrors.DependencyFailureError(err, "failed to send offer")
			}
			apphttp.WriteJSON(w, http.StatusAccepted, map[string]string{"cred_def_id": spec.CredDefID})
			return nil
		}))
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := apphttp.ServeAndWait(ctx, r, logger, &cfg.Server); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

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

	logger.Info("Starting centralbank controller")

	admin, err := acapy.New(acapy.Config{
		AdminURL: cfg.Agent.AdminURL,
		APIKey:   cfg.Agent.APIKey,
		Timeout:  cfg.Agent.Timeout,
	}, acapy.WithLogger(logger.Named("acapy")))
	if err != nil {
		logger.Fatal("Failed to initialize admin client", zap.Error(err))
	}

	// Issuer parties run no proof chain; the session only tracks the
	// connection and issues credentials on request-received.
	session := orchestrator.NewSession(admin, nil, nil, logger.Named("orchestrator"))

	registry := exchange.NewRegistry()
	hooks := webhook.NewRouter(session, registry, logger.Named("webhook"))

	sendOffer := func(spec issuer.OfferSpec) apphttp.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) error {
			connID := session.ConnectionID()
			if connID == "" {
				return apperrors.BadRequestError(nil, "no counterparty connection")
			}
			if spec.CredDefID == "" {
				return apperrors.BadRequestError(nil, "credential definition not configured")
			}
			offer := issuer.BuildOffer(connID, spec)
			if err := admin.SendCredentialOffer(req.Context(), offer); err != nil {
				return apperrors.DependencyFailureError(err, "failed to send offer")
			}
			apphttp.WriteJSON(w, http.StatusAccepted, map[string]string{"cred_def_id": spec.CredDefID})
			return nil
		}
	}

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
		r.Post("/offer-transaction-license", apphttp.HandleError(func(w http.ResponseWriter, req *http.Request) error {
			spec := issuer.TransactionLicenseSpec(cfg.Issuer.TransactionCredDefID, time.Now(), cfg.Issuer.HolderAge)
			return sendOffer(spec)(w, req)
		}))
		r.Post("/offer-bridging-license", apphttp.HandleError(func(w http.ResponseWriter, req *http.Request) error {
			spec := issuer.BridgingLicenseSpec(cfg.Issuer.BridgingCredDefID, time.Now(), cfg.Issuer.HolderAge, issuer.DemoIdentity())
			return sendOffer(spec)(w, req)
		}))
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := apphttp.ServeAndWait(ctx, r, logger, &cfg.Server); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
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
	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/gateway"
	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/orchestrator"
	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/proof"
	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/webhook"
)

var configPath = flag.String("config", "config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.LoadBridge(*configPath)
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

	logger.Info("Starting bridge controller")

	admin, err := acapy.New(acapy.Config{
		AdminURL: cfg.Agent.AdminURL,
		APIKey:   cfg.Agent.APIKey,
		Timeout:  cfg.Agent.Timeout,
	}, acapy.WithLogger(logger.Named("acapy")))
	if err != nil {
		logger.Fatal("Failed to initialize admin client", zap.Error(err))
	}

	ledger, err := gateway.New(gateway.Config{
		BaseURL:    cfg.Gateway.BaseURL,
		KeychainID: cfg.Gateway.KeychainID,
		Timeout:    cfg.Gateway.Timeout,
		MaxRetries: cfg.Gateway.MaxRetries,
	}, gateway.WithLogger(logger.Named("gateway")))
	if err != nil {
		logger.Fatal("Failed to initialize gateway client", zap.Error(err))
	}

	chain := proof.DefaultChain(time.Now(), cfg.Chain.MinimumAge)
	session := orchestrator.NewSession(admin, ledger, chain, logger.Named("orchestrator"),
		orchestrator.WithAutoStart(cfg.Chain.AutoStart))

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

	// Readiness follows the counterparty connection
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
		logger.Info("Metrics enabled")
	}

	hooks.RegisterRoutes(r)

	// Operator actions standing in for the interactive menu
	r.Route("/actions", func(r chi.Router) {
		r.Post("/request-proofs", apphttp.HandleError(func(w http.ResponseWriter, req *http.Request) error {
			if err := session.StartChain(req.Context()); err != nil {
				return apperrors.BadRequestError(err, err.Error())
			}
			apphttp.WriteJSON(w, http.StatusAccepted, map[string]string{"state": session.State().String()})
			return nil
		}))
		r.Post("/send-message", apphttp.HandleError(func(w http.ResponseWriter, req *http.Request) error {
			body, err := io.ReadAll(io.LimitReader(req.Body, 1<<20))
			if err != nil {
				return apperrors.BadRequestError(err, "failed to read request")
			}
			var msg struct {
				Content string `json:"content"`
			}
			if err := json.Unmarshal(body, &msg); err != nil {
				return apperrors.BadRequestError(err, "invalid JSON")
			}
			if msg.Content == "" {
				return apperrors.BadRequestError(nil, "content is required")
			}
			if err := admin.SendBasicMessage(req.Context(), session.ConnectionID(), msg.Content); err != nil {
				return apperrors.DependencyFailureError(err, "failed to send message")
			}
			apphttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "sent"})
			return nil
		}))
		r.Get("/state", func(w http.ResponseWriter, req *http.Request) {
			apphttp.WriteJSON(w, http.StatusOK, map[string]string{
				"state":         session.State().String(),
				"connection_id": session.ConnectionID(),
			})
		})
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := apphttp.ServeAndWait(ctx, r, logger, &cfg.Server); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

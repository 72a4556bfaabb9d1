package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nomad-at-you/ssi-cbdc-bridging/internal/metrics"
	apperrors "github.com/nomad-at-you/ssi-cbdc-bridging/pkg/app/errors"
	apphttp "github.com/nomad-at-you/ssi-cbdc-bridging/pkg/app/http"
	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/exchange"
)

// Handler consumes validated, deduplicated webhook events.
type Handler interface {
	HandleConnection(ctx context.Context, ev ConnectionEvent) error
	HandleCredential(ctx context.Context, ev CredentialEvent) error
	HandlePresentation(ctx context.Context, ev PresentationEvent) error
	HandleBasicMessage(ctx context.Context, ev BasicMessageEvent) error
}

// Router dispatches incoming notifications by topic. Exchange-state topics
// pass through the state registry first so duplicate deliveries never reach
// the handler.
type Router struct {
	handler  Handler
	registry *exchange.Registry
	validate *validator.Validate
	logger   *zap.Logger
}

// NewRouter creates a webhook router.
func NewRouter(handler Handler, registry *exchange.Registry, logger *zap.Logger) *Router {
	return &Router{
		handler:  handler,
		registry: registry,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes mounts the webhook endpoint on the given chi router.
// The agent posts to /webhooks/topic/{topic}/ with a trailing slash; both
// forms are accepted.
func (rt *Router) RegisterRoutes(r chi.Router) {
	r.Post("/webhooks/topic/{topic}", apphttp.HandleError(rt.dispatch))
	r.Post("/webhooks/topic/{topic}/", apphttp.HandleError(rt.dispatch))
}

func (rt *Router) dispatch(w http.ResponseWriter, r *http.Request) error {
	topic := chi.URLParam(r, "topic")
	metrics.WebhookEventsTotal.WithLabelValues(topic).Inc()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}

	switch topic {
	case TopicConnections:
		var ev ConnectionEvent
		if err := rt.decode(body, &ev); err != nil {
			return err
		}
		if err := rt.handler.HandleConnection(r.Context(), ev); err != nil {
			return apperrors.GeneralError(err)
		}

	case TopicIssueCredential:
		var ev CredentialEvent
		if err := rt.decode(body, &ev); err != nil {
			return err
		}
		if !rt.registry.ShouldProcess(ev.CredExID, ev.State) {
			metrics.DuplicateNotifications.WithLabelValues(topic).Inc()
			rt.logger.Debug("Duplicate credential notification suppressed",
				zap.String("cred_ex_id", ev.CredExID),
				zap.String("state", ev.State))
			break
		}
		metrics.TrackedExchanges.Set(float64(rt.registry.Len()))
		if err := rt.handler.HandleCredential(r.Context(), ev); err != nil {
			// Undo the dedup record so the redelivery is not suppressed.
			rt.registry.Forget(ev.CredExID, ev.State)
			return apperrors.GeneralError(err)
		}

	case TopicPresentProof:
		var ev PresentationEvent
		if err := rt.decode(body, &ev); err != nil {
			return err
		}
		if !rt.registry.ShouldProcess(ev.PresExID, ev.State) {
			metrics.DuplicateNotifications.WithLabelValues(topic).Inc()
			rt.logger.Debug("Duplicate presentation notification suppressed",
				zap.String("pres_ex_id", ev.PresExID),
				zap.String("state", ev.State))
			break
		}
		metrics.TrackedExchanges.Set(float64(rt.registry.Len()))
		if err := rt.handler.HandlePresentation(r.Context(), ev); err != nil {
			// Undo the dedup record so the redelivery is not suppressed.
			rt.registry.Forget(ev.PresExID, ev.State)
			return apperrors.GeneralError(err)
		}

	case TopicBasicMessages:
		var ev BasicMessageEvent
		if err := rt.decode(body, &ev); err != nil {
			return err
		}
		if err := rt.handler.HandleBasicMessage(r.Context(), ev); err != nil {
			return apperrors.GeneralError(err)
		}

	case TopicIssueCredentialFmt, TopicOutOfBand:
		// Format-specific and out-of-band notifications carry nothing the
		// controllers act on.

	default:
		rt.logger.Debug("Ignoring unrecognized webhook topic", zap.String("topic", topic))
	}

	w.WriteHeader(http.StatusOK)
	return nil
}

// decode unmarshals and validates a payload, rejecting malformed
// notifications before they reach orchestration logic.
func (rt *Router) decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	if err := rt.validate.Struct(out); err != nil {
		return apperrors.BadRequestError(err, "missing required fields")
	}
	return nil
}

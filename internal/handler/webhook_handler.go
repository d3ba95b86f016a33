package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dafibh/nexus/nexus-backend/internal/domain"
	"github.com/dafibh/nexus/nexus-backend/internal/webhook"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// IdentityReconciler applies identity-provider events to the store.
// *service.IdentitySyncService satisfies it.
type IdentityReconciler interface {
	SyncUser(ctx context.Context, in domain.IdentityUser) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	CreateWorkspace(ctx context.Context, in domain.IdentityOrganization) (*domain.Workspace, error)
	UpdateWorkspace(ctx context.Context, in domain.IdentityOrganization) (*domain.Workspace, error)
	DeleteWorkspace(ctx context.Context, id string) error
	UpsertMembership(ctx context.Context, in domain.IdentityMembership) (*domain.WorkspaceMember, error)
	DeleteMembership(ctx context.Context, userID, workspaceID string) error
}

// WebhookHandler receives identity-provider deliveries
type WebhookHandler struct {
	reconciler IdentityReconciler
	verifier   *webhook.Verifier
	schemas    *webhook.SchemaValidator
	deliveries domain.DeliveryLog
}

// NewWebhookHandler creates a new WebhookHandler. A nil delivery log disables de-duplication.
func NewWebhookHandler(reconciler IdentityReconciler, verifier *webhook.Verifier, schemas *webhook.SchemaValidator, deliveries domain.DeliveryLog) *WebhookHandler {
	if deliveries == nil {
		deliveries = domain.NoopDeliveryLog{}
	}
	return &WebhookHandler{
		reconciler: reconciler,
		verifier:   verifier,
		schemas:    schemas,
		deliveries: deliveries,
	}
}

// HandleClerk godoc
// @Summary Receive an identity-provider webhook
// @Description Verifies the Svix signature and reconciles user, organization and membership events
// @Tags webhooks
// @Accept json
// @Produce json
// @Param svix-id header string true "Delivery ID"
// @Param svix-timestamp header string true "Delivery timestamp (unix seconds)"
// @Param svix-signature header string true "Delivery signatures"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /webhooks/clerk [post]
func (h *WebhookHandler) HandleClerk(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	headers := c.Request().Header
	if err := h.verifier.Verify(headers, body); err != nil {
		log.Warn().Err(err).Str("delivery_id", headers.Get(webhook.HeaderID)).Msg("Webhook signature rejected")
		return NewUnauthorizedError(c, "Invalid signature")
	}

	if err := h.schemas.Validate(body); err != nil {
		log.Warn().Err(err).Str("delivery_id", headers.Get(webhook.HeaderID)).Msg("Webhook payload rejected")
		return NewValidationError(c, err.Error())
	}

	env, err := webhook.ParseEnvelope(body)
	if err != nil {
		return NewValidationError(c, err.Error())
	}

	deliveryID := headers.Get(webhook.HeaderID)
	logger := log.With().Str("delivery_id", deliveryID).Str("event_type", env.Type).Logger()

	if !webhook.IsHandled(env.Type) {
		logger.Debug().Msg("Webhook event ignored")
		return c.JSON(http.StatusOK, MessageResponse{Message: "event ignored"})
	}

	ctx := c.Request().Context()
	seen, err := h.deliveries.Seen(ctx, deliveryID)
	if err != nil {
		logger.Warn().Err(err).Msg("Delivery log lookup failed")
	}
	if seen {
		logger.Info().Msg("Webhook delivery already processed")
		return c.JSON(http.StatusOK, MessageResponse{Message: "already processed"})
	}

	err = h.dispatch(ctx, env)
	skipped := errors.Is(err, webhook.ErrNoEmailAddress)
	if err != nil && !skipped {
		logger.Error().Err(err).Msg("Webhook reconciliation failed")
		return NewInternalError(c, err.Error())
	}

	if err := h.deliveries.MarkProcessed(ctx, deliveryID); err != nil {
		logger.Warn().Err(err).Msg("Failed to mark delivery processed")
	}

	if skipped {
		logger.Warn().Err(err).Msg("Webhook user skipped")
		return c.JSON(http.StatusOK, MessageResponse{Message: "event ignored"})
	}
	logger.Info().Msg("Webhook processed")
	return c.JSON(http.StatusOK, MessageResponse{Message: "ok"})
}

// dispatch routes the event to its reconciler action
func (h *WebhookHandler) dispatch(ctx context.Context, env *webhook.Envelope) error {
	switch env.Type {
	case webhook.EventUserCreated, webhook.EventUserUpdated:
		var data webhook.UserData
		if err := env.DecodeData(&data); err != nil {
			return err
		}
		// users are keyed by email; phone-only sign-ups cannot be stored
		if data.PrimaryEmail() == "" {
			return fmt.Errorf("%w: %s", webhook.ErrNoEmailAddress, data.ID)
		}
		_, err := h.reconciler.SyncUser(ctx, data.ToIdentity())
		return err

	case webhook.EventUserDeleted:
		var data webhook.DeletedObjectData
		if err := env.DecodeData(&data); err != nil {
			return err
		}
		return h.reconciler.DeleteUser(ctx, data.ID)

	case webhook.EventOrganizationCreated:
		var data webhook.OrganizationData
		if err := env.DecodeData(&data); err != nil {
			return err
		}
		_, err := h.reconciler.CreateWorkspace(ctx, data.ToIdentity())
		return err

	case webhook.EventOrganizationUpdated:
		var data webhook.OrganizationData
		if err := env.DecodeData(&data); err != nil {
			return err
		}
		_, err := h.reconciler.UpdateWorkspace(ctx, data.ToIdentity())
		return err

	case webhook.EventOrganizationDeleted:
		var data webhook.DeletedObjectData
		if err := env.DecodeData(&data); err != nil {
			return err
		}
		return h.reconciler.DeleteWorkspace(ctx, data.ID)

	case webhook.EventMembershipCreated, webhook.EventMembershipUpdated:
		var data webhook.MembershipData
		if err := env.DecodeData(&data); err != nil {
			return err
		}
		_, err := h.reconciler.UpsertMembership(ctx, data.ToIdentity())
		return err

	case webhook.EventMembershipDeleted:
		var data webhook.MembershipData
		if err := env.DecodeData(&data); err != nil {
			return err
		}
		in := data.ToIdentity()
		return h.reconciler.DeleteMembership(ctx, in.UserID, in.OrganizationID)

	case webhook.EventInvitationAccepted:
		var data webhook.InvitationData
		if err := env.DecodeData(&data); err != nil {
			return err
		}
		_, err := h.reconciler.UpsertMembership(ctx, data.ToIdentity())
		return err
	}
	return fmt.Errorf("no handler for %s", env.Type)
}

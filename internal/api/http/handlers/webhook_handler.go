package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/api/dto"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// PurchaseOpener is the slice of the ticket service the webhook needs.
type PurchaseOpener interface {
	OpenPurchase(ctx context.Context, notice *domain.PurchaseNotice) (*domain.Ticket, error)
}

// WebhookHandler accepts purchase notifications from the storefront. The
// sender is implicitly trusted; there is no signature verification.
type WebhookHandler struct {
	tickets PurchaseOpener
	logger  *zap.Logger
}

// NewWebhookHandler constructs the handler.
func NewWebhookHandler(tickets PurchaseOpener, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{tickets: tickets, logger: logger}
}

// HandlePurchase POST /webhook/purchase.
func (h *WebhookHandler) HandlePurchase(c *fiber.Ctx) error {
	var payload dto.PurchasePayload
	if err := c.BodyParser(&payload); err != nil {
		return h.fail(c, errorutil.NewMalformedPayload("invalid JSON body", nil))
	}
	if err := payload.Validate(); err != nil {
		return h.fail(c, err)
	}

	h.logger.Info("purchase webhook received",
		zap.String("buyer", payload.Buyer),
		zap.String("transaction_id", payload.TransactionID),
		zap.String("total_amount", payload.TotalAmount))

	ticket, err := h.tickets.OpenPurchase(c.UserContext(), payload.ToNotice())
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"ticket_id":   ticket.ChannelID,
		"ticket_name": ticket.ChannelName,
	})
}

// fail renders the storefront-facing error shape. The webhook contract
// predates the service and uses {success, error} rather than the nested
// error object of the other endpoints.
func (h *WebhookHandler) fail(c *fiber.Ctx, err error) error {
	domainErr := errorutil.ToDomainError(err)
	h.logger.Error("purchase webhook failed",
		zap.String("code", domainErr.Code),
		zap.Error(domainErr))
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{
		"success": false,
		"error":   domainErr.Message,
	})
}

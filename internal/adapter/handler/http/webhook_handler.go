package http

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
	"github.com/wekeepgrowing/salon-billing/internal/usecase"
	"go.uber.org/zap"
)

// SignatureHeader carries the provider's webhook signature
const SignatureHeader = "Stripe-Signature"

// maxWebhookBody bounds the raw body read before verification
const maxWebhookBody = 1 << 20

type WebhookProcessor interface {
	ProcessWebhook(ctx context.Context, payload []byte, signature, correlationID string) (*usecase.WebhookResult, error)
}

type WebhookHandler struct {
	processor WebhookProcessor
	logger    *zap.Logger
}

func NewWebhookHandler(processor WebhookProcessor, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{processor: processor, logger: logger}
}

// HandleWebhook answers purely by error class so the provider retries only
// transient failures. Response bodies never carry internal detail.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	correlationID := requestID(c)

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody+1))
	if err != nil || len(body) > maxWebhookBody {
		h.logger.Warn("Unreadable webhook body",
			zap.String("correlation_id", correlationID),
			zap.Int("bytes", len(body)),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	result, err := h.processor.ProcessWebhook(c.Request().Context(), body, c.Request().Header.Get(SignatureHeader), correlationID)
	class := domainErrors.Classify(err)
	status := domainErrors.HTTPStatusFor(class)

	fields := []zap.Field{
		zap.String("correlation_id", correlationID),
		zap.String("class", class.String()),
		zap.Int("status", status),
	}
	if result != nil {
		fields = append(fields,
			zap.String("event_id", result.EventID),
			zap.String("event_type", result.EventType),
			zap.Bool("duplicate", result.Duplicate))
	}

	switch class {
	case domainErrors.ClassNone, domainErrors.ClassNoOp:
		h.logger.Info("Webhook acknowledged", fields...)
		resp := echo.Map{"received": true}
		if result != nil && result.Duplicate {
			resp["duplicate"] = true
		}
		return c.JSON(status, resp)
	case domainErrors.ClassPermanent:
		h.logger.Warn("Webhook rejected", append(fields, zap.Error(err))...)
		return c.JSON(status, echo.Map{"error": "invalid webhook"})
	default:
		h.logger.Error("Webhook processing failed", append(fields, zap.Error(err))...)
		return c.JSON(status, echo.Map{"error": "webhook processing failed"})
	}
}

// requestID prefers the id set by the request-id middleware.
func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	if id := c.Request().Header.Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return uuid.NewString()
}

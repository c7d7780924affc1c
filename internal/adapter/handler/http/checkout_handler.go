package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/salon-billing/internal/domain/dto"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
	"go.uber.org/zap"
)

type CheckoutCreator interface {
	CreateCheckout(ctx context.Context, priceID, email string) (string, error)
}

type CheckoutHandler struct {
	checkout CheckoutCreator
	plans    *entity.PlanCatalog
	logger   *zap.Logger
}

func NewCheckoutHandler(checkout CheckoutCreator, plans *entity.PlanCatalog, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, plans: plans, logger: logger}
}

// CreateCheckout answers with the hosted checkout redirect URL
func (h *CheckoutHandler) CreateCheckout(c echo.Context) error {
	var req dto.CheckoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return httpError(err)
	}

	h.logger.Info("Creating checkout session", zap.String("price_id", req.PriceID))

	url, err := h.checkout.CreateCheckout(c.Request().Context(), req.PriceID, req.Email)
	if err != nil {
		return failure(h.logger, "Failed to create checkout session", err,
			zap.String("price_id", req.PriceID))
	}
	return c.JSON(http.StatusCreated, echo.Map{"url": url})
}

// GetPlans lists the offered prices
func (h *CheckoutHandler) GetPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"plans": h.plans.Entries()})
}

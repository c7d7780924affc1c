package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/salon-billing/internal/middleware/auth"
	"github.com/wekeepgrowing/salon-billing/internal/usecase"
	"go.uber.org/zap"
)

type SubscriptionReader interface {
	Current(ctx context.Context, ownerID uuid.UUID, now time.Time) (*usecase.CurrentSubscription, error)
}

type SubscriptionHandler struct {
	subscriptions SubscriptionReader
	logger        *zap.Logger
}

func NewSubscriptionHandler(subscriptions SubscriptionReader, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions, logger: logger}
}

func (h *SubscriptionHandler) GetCurrentSubscription(c echo.Context) error {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	current, err := h.subscriptions.Current(c.Request().Context(), user.UserID, time.Now())
	if err != nil {
		return failure(h.logger, "Failed to load subscription", err,
			zap.String("user_id", user.UserID.String()))
	}
	return c.JSON(http.StatusOK, current)
}

// RequireActiveSubscription lets a request through only while the caller is
// entitled. Admins bypass the check.
func (h *SubscriptionHandler) RequireActiveSubscription() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := auth.GetUserFromContext(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			if user.IsAdmin() {
				return next(c)
			}

			current, err := h.subscriptions.Current(c.Request().Context(), user.UserID, time.Now())
			if err != nil {
				return failure(h.logger, "Failed to check entitlement", err,
					zap.String("user_id", user.UserID.String()))
			}
			if !current.Active {
				h.logger.Info("Request blocked without active subscription",
					zap.String("user_id", user.UserID.String()),
					zap.String("path", c.Request().URL.Path))
				return c.JSON(http.StatusPaymentRequired, echo.Map{
					"error": "Active subscription required",
					"code":  "SUBSCRIPTION_REQUIRED",
				})
			}
			return next(c)
		}
	}
}

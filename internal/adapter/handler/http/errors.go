package http

import (
	"errors"
	"net/http"

	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
	pkgErrors "github.com/wekeepgrowing/salon-billing/pkg/errors"
	"go.uber.org/zap"
)

// toAppError maps the billing taxonomy onto the shared error codes. Only
// validation messages are safe to show to the caller.
func toAppError(err error) *pkgErrors.AppError {
	var appErr *pkgErrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, domainErrors.ErrValidation), errors.Is(err, domainErrors.ErrSignatureInvalid):
		return pkgErrors.NewAppError(pkgErrors.ErrInvalidArgument, err.Error(), err)
	case errors.Is(err, domainErrors.ErrNotFound):
		return pkgErrors.NewAppError(pkgErrors.ErrNotFound, "resource not found", err)
	case errors.Is(err, domainErrors.ErrInvalidTransition):
		return pkgErrors.NewAppError(pkgErrors.ErrFailedPrecondition, "invoice is not open", err)
	case errors.Is(err, domainErrors.ErrExternalProvider):
		return pkgErrors.NewAppError(pkgErrors.ErrUnavailable, "payment provider unavailable", err)
	default:
		return pkgErrors.NewAppError(pkgErrors.ErrInternal, "internal error", err)
	}
}

// httpError converts err for echo's error handler.
func httpError(err error) error {
	return pkgErrors.ToHTTPError(toAppError(err))
}

// failure converts err like httpError and logs it when the caller cannot fix it.
func failure(logger *zap.Logger, msg string, err error, fields ...zap.Field) error {
	appErr := toAppError(err)
	if pkgErrors.ToHTTPStatus(pkgErrors.CodeOf(appErr)) >= http.StatusInternalServerError {
		pkgErrors.LogError(logger, appErr, msg, fields...)
	}
	return pkgErrors.ToHTTPError(appErr)
}

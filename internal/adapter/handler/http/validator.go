package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
)

// RequestValidator plugs validator/v10 into echo.Context.Validate
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return domainErrors.Validationf("%s", err.Error())
	}
	return nil
}

// bindAndValidate binds the request into dst and validates it.
func bindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return domainErrors.Validationf("malformed request")
	}
	if err := c.Validate(dst); err != nil {
		return err
	}
	return nil
}

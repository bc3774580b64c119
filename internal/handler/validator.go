package handler

import (
	"github.com/go-playground/validator/v10"
)

// RequestValidator подключает validator/v10 к echo (e.Validator).
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

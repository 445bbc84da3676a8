package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/matdori/matdori-backend/internal/app/model"
)

var ErrInvalidInput = errors.New("invalid input")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// rating: model.MinRating ~ model.MaxRating
	if err := v.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
		r := fl.Field().Int()
		return r >= model.MinRating && r <= model.MaxRating
	}); err != nil {
		panic(err)
	}
	return v
}

// validateStruct wraps validator failures with ErrInvalidInput; the
// validator.ValidationErrors stay reachable through errors.As.
func validateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if err := validate.Var(email, "required,email,max=254"); err != nil {
		return fmt.Errorf("%w: email: %w", ErrInvalidInput, err)
	}
	return nil
}

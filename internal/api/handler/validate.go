package handler

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/errors"
)

// FieldError holds per-field validation failure messages.
type FieldError struct {
	Fields map[string]string
}

func (e *FieldError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func (e *FieldError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "validation error: %v", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "field required"
		default:
			fields[fe.Field()] = "failed " + fe.Tag() + " check"
		}
	}
	return &FieldError{Fields: fields}
}

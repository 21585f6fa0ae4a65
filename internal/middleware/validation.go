package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/photoalbum/internal/app/models/dto"
)

// ValidatedBodyKey is the context key under which ValidateRequest stores the bound body
const ValidatedBodyKey = "validatedBody"

var validate = validator.New()

// ValidateRequest binds the JSON body into a fresh value from newBody,
// validates its `validate` tags and stores it under ValidatedBodyKey.
func ValidateRequest(newBody func() interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		obj := newBody()
		if err := c.ShouldBindJSON(obj); err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format")
			errorDetail = errorDetail.WithDetails(err.Error())
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}

		if err := validate.Struct(obj); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(validationErrorDetail(err)))
			return
		}

		c.Set(ValidatedBodyKey, obj)
		c.Next()
	}
}

func validationErrorDetail(err error) *dto.ErrorDetail {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").WithDetails(err.Error())
	}
	first := fieldErrs[0]
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, formatValidationError(first)).WithField(first.Field())
	if len(fieldErrs) > 1 {
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, formatValidationError(fe))
		}
		detail = detail.WithDetails(msgs)
	}
	return detail
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}

package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/photoalbum/internal/app/models/dto"
	"github.com/yigit/photoalbum/internal/pkg/apperrors"
	"github.com/yigit/photoalbum/internal/pkg/logger"
)

// HandleAPIError maps pipeline errors onto HTTP responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}

// HandleAPIErrorWithData is HandleAPIError for failures that still produced a
// partial result; the result is attached as the error details.
func HandleAPIErrorWithData(c *gin.Context, err error, data interface{}) {
	status, detail := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}
	c.JSON(status, dto.NewErrorResponse(detail.WithDetails(data)))
}

func classify(err error) (int, *dto.ErrorDetail) {
	var custom *apperrors.CustomError
	message := err.Error()
	if errors.As(err, &custom) && custom.Message != "" {
		message = custom.Message
	}

	switch {
	case errors.Is(err, apperrors.ErrUnsupportedFormat):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeUnsupportedFormat, message)
	case errors.Is(err, apperrors.ErrMalformedSourceFile):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeMalformedSource, message)
	case errors.Is(err, apperrors.ErrInvalidPath):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeInvalidPath, message)
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, message)
	case errors.Is(err, apperrors.ErrJobNotFound),
		errors.Is(err, apperrors.ErrStudentNotFound),
		errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message)
	case errors.Is(err, apperrors.ErrReferentialViolation):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeReferential, message)
	case errors.Is(err, apperrors.ErrStoreWrite):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Failed to write to the database")
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

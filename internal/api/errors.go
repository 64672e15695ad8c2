package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/darkinowls/recipe-app-api/internal/service"
	"github.com/darkinowls/recipe-app-api/internal/types"
)

const (
	msgNotFound         = "not found"
	msgValidationFailed = "validation failed"
	msgInternal         = "internal server error"
)

// respondError writes the status and body for a service error. Unknown
// errors become a 500 and are attached to the context for reporting.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: msgValidationFailed, Fields: verr.Fields})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: msgNotFound})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:  msgValidationFailed,
			Fields: map[string][]string{"email": {err.Error()}},
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:  err.Error(),
			Fields: map[string][]string{"non_field_errors": {err.Error()}},
		})
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrInactiveUser):
		c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: msgInternal})
	}
}

// respondBindError writes a 400 for a request body that failed to bind.
func respondBindError(c *gin.Context, err error) {
	if fields, ok := bindingFields(err); ok {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: msgValidationFailed, Fields: fields})
		return
	}
	c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid request body"})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, types.ErrorResponse{Error: msgNotFound})
}

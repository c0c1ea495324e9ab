package response

import (
	"net/http"

	"atlastours/internal/shared/apperrors"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError maps the error taxonomy to HTTP status codes:
// ValidationError 400, NotFoundError 404, ConflictError and InvalidStateError 409,
// everything else 500. The error message is surfaced verbatim so callers can tell
// "already done" from "illegal".
func RespondError(c *gin.Context, err error) {
	switch {
	case apperrors.IsValidation(err):
		RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
	case apperrors.IsNotFound(err):
		RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
	case apperrors.IsConflict(err), apperrors.IsInvalidState(err):
		RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, nil)
	default:
		RespondJSON(c, "error", http.StatusInternalServerError, "Internal server error", nil, nil)
	}
}

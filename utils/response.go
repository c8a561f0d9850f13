package utils

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform response wrapper returned by every endpoint.
type Envelope struct {
	Ok      bool           `json:"ok"`
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Result  any            `json:"result,omitempty"`
	Meta    *EnvelopeMeta  `json:"meta,omitempty"`
}

type EnvelopeMeta struct {
	Timestamp string `json:"timestamp"`
}

func newMeta() *EnvelopeMeta {
	return &EnvelopeMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

func RespondSuccess(c *gin.Context, status int, message string, result any) {
	c.JSON(status, Envelope{
		Ok:      true,
		Code:    status,
		Message: message,
		Result:  result,
		Meta:    newMeta(),
	})
}

func RespondFailure(c *gin.Context, status int, message string, result any) {
	c.JSON(status, Envelope{
		Ok:      false,
		Code:    status,
		Message: message,
		Result:  result,
		Meta:    newMeta(),
	})
}

// RespondError maps the error taxonomy onto envelope status codes.
// Field-level validation detail rides in result as {field: message}.
func RespondError(c *gin.Context, err error) {
	var ve *ValidationError
	var nfe *NotFoundError
	var ae *AuthorizationError
	var pe *PersistenceError

	switch {
	case errors.As(err, &ve):
		RespondFailure(c, http.StatusBadRequest, "validation failed", ve.Fields)
	case errors.As(err, &nfe):
		RespondFailure(c, http.StatusNotFound, nfe.Error(), nil)
	case errors.As(err, &ae):
		RespondFailure(c, http.StatusForbidden, ae.Error(), nil)
	case errors.As(err, &pe):
		RespondFailure(c, http.StatusInternalServerError, "internal error", nil)
	case errors.Is(err, ErrorRecordNotFound):
		RespondFailure(c, http.StatusNotFound, err.Error(), nil)
	default:
		RespondFailure(c, http.StatusInternalServerError, "internal error", nil)
	}
}

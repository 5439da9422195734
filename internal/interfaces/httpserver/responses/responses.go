package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agenthub/services/chat-api/internal/infrastructure/logger"
	"agenthub/services/chat-api/internal/utils/platformerrors"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleError writes the error envelope for err. Validation and not-found
// errors surface their message; internal and credential-corruption failures
// are logged in full and answered with a generic message.
func HandleError(c *gin.Context, err error) {
	platformErr, ok := platformerrors.GetPlatformError(err)
	if !ok {
		platformErr = platformerrors.AsError(c.Request.Context(), platformerrors.LayerHandler, err, "unexpected error")
	}

	status := platformerrors.ErrorTypeToHTTPStatus(platformErr.Type)
	message := platformErr.Message

	if status >= http.StatusInternalServerError {
		platformerrors.LogError(logger.GetLogger(), platformErr)
		if status == http.StatusInternalServerError {
			message = "internal error"
		}
	}

	c.JSON(status, ErrorResponse{Error: message})
}

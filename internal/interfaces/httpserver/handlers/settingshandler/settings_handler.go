package settingshandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agenthub/services/chat-api/internal/domain/tenant"
	middleware "agenthub/services/chat-api/internal/interfaces/httpserver/middlewares"
	"agenthub/services/chat-api/internal/interfaces/httpserver/responses"
)

// SettingsHandler stores tenant provider credentials.
type SettingsHandler struct {
	tenants *tenant.Service
}

func NewSettingsHandler(tenants *tenant.Service) *SettingsHandler {
	return &SettingsHandler{tenants: tenants}
}

// SaveCredentialRequest is the body of PUT /v1/settings/credentials.
type SaveCredentialRequest struct {
	Provider string `json:"provider" binding:"required"`
	APIKey   string `json:"api_key" binding:"required"`
}

// SaveCredential handles PUT /v1/settings/credentials. The key is encrypted
// before it touches storage and never echoed back beyond a masked suffix.
func (h *SettingsHandler) SaveCredential(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, responses.ErrorResponse{Error: "unauthorized"})
		return
	}
	t, err := h.tenants.Resolve(c.Request.Context(), principal.TenantPublicID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	var req SaveCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Error: "provider and api_key are required"})
		return
	}

	provider := tenant.CredentialProvider(req.Provider)
	if err := h.tenants.SaveCredential(c.Request.Context(), t, provider, req.APIKey); err != nil {
		responses.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"provider":   req.Provider,
		"key_suffix": maskKey(req.APIKey),
	})
}

// maskKey keeps only the last four characters of a key for display.
func maskKey(apiKey string) string {
	if len(apiKey) <= 4 {
		return "****"
	}
	return "****" + apiKey[len(apiKey)-4:]
}

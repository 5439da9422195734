package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agenthub/services/chat-api/internal/config"
	"agenthub/services/chat-api/internal/interfaces/httpserver/handlers/agenthandler"
	"agenthub/services/chat-api/internal/interfaces/httpserver/handlers/chathandler"
	"agenthub/services/chat-api/internal/interfaces/httpserver/handlers/conversationhandler"
	"agenthub/services/chat-api/internal/interfaces/httpserver/handlers/settingshandler"
	"agenthub/services/chat-api/internal/interfaces/httpserver/handlers/subscriptionhandler"
	"agenthub/services/chat-api/internal/interfaces/httpserver/handlers/usagehandler"
)

type V1Route struct {
	chat         *chathandler.ChatHandler
	agent        *agenthandler.AgentHandler
	conversation *conversationhandler.ConversationHandler
	settings     *settingshandler.SettingsHandler
	usage        *usagehandler.UsageHandler
	subscription *subscriptionhandler.SubscriptionHandler
}

func NewV1Route(
	chat *chathandler.ChatHandler,
	agent *agenthandler.AgentHandler,
	conversation *conversationhandler.ConversationHandler,
	settings *settingshandler.SettingsHandler,
	usage *usagehandler.UsageHandler,
	subscription *subscriptionhandler.SubscriptionHandler,
) *V1Route {
	return &V1Route{
		chat,
		agent,
		conversation,
		settings,
		usage,
		subscription,
	}
}

func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")
	v1Router.GET("/version", GetVersion)

	v1Router.POST("/chat", v1Route.chat.Chat)

	agents := v1Router.Group("/agents")
	agents.GET("", v1Route.agent.List)
	agents.POST("", v1Route.agent.Create)
	agents.DELETE("/:id", v1Route.agent.Delete)

	conversations := v1Router.Group("/conversations")
	conversations.GET("", v1Route.conversation.List)
	conversations.GET("/:id/messages", v1Route.conversation.Messages)

	v1Router.PUT("/settings/credentials", v1Route.settings.SaveCredential)
	v1Router.GET("/usage", v1Route.usage.Get)

	subscription := v1Router.Group("/subscription")
	subscription.POST("/upgrade", v1Route.subscription.Upgrade)
	subscription.POST("/downgrade", v1Route.subscription.Downgrade)
}

func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": config.Version})
}

package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dndsim/internal/auth"
)

// NewRouter builds the full route table. Auth endpoints for signup/login
// are public; everything else sits behind the bearer-token middleware.
func NewRouter(h *Handler, tokens *auth.TokenManager, allowedOrigins []string, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(log))
	router.Use(gin.Recovery())
	router.Use(CORS(allowedOrigins))

	router.GET("/health", h.Health)

	api := router.Group("/api")
	{
		api.POST("/auth/signup", h.Signup)
		api.POST("/auth/login", h.Login)

		protected := api.Group("")
		protected.Use(AuthRequired(tokens, log))
		{
			protected.GET("/auth/me", h.Me)
			protected.POST("/auth/refresh", h.Refresh)
			protected.POST("/auth/logout", h.Logout)

			protected.GET("/campaigns", h.ListCampaigns)
			protected.POST("/campaigns", h.CreateCampaign)
			protected.GET("/campaigns/:id", h.GetCampaign)
			protected.PUT("/campaigns/:id", h.UpdateCampaign)
			protected.DELETE("/campaigns/:id", h.DeleteCampaign)
			protected.PUT("/campaigns/:id/character", h.PutCharacter)
			protected.GET("/campaigns/:id/character", h.GetCharacter)

			protected.POST("/chat", h.Chat)
			protected.GET("/chat/:campaignId", h.GetTranscript)
		}
	}

	return router
}

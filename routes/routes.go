package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"voicecal/handlers"
	"voicecal/utils"
)

// RegisterDialogueRoutes sets up the endpoints for the dialogue engine.
func RegisterDialogueRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/dialogue")
	{
		api.POST("/session", hb.StartSession)
		api.POST("/session/:sessionID/utterance", hb.SubmitUtterance)
		api.DELETE("/session/:sessionID", hb.EndSession)
	}
}

// RegisterVoiceRoutes sets up the speech endpoints.
func RegisterVoiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/voice")
	{
		api.POST("/transcribe", hb.Transcribe)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "health": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterDialogueRoutes(r, hb)
	RegisterVoiceRoutes(r, hb)
	RegisterHealthRoute(r)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserMiddleware resolves the calling user from the X-User-ID header and
// sets "userID" in the context. Requests without it are rejected.
// TODO: replace with JWT validation once the auth service issues tokens.
func UserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing X-User-ID header"})
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}

// RegisterRoutes registers all the routes for the document chat service.
func RegisterRoutes(router *gin.Engine, api *API) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(UserMiddleware())
	{
		v1.POST("/documents", api.UploadDocumentHandler)
		v1.GET("/documents", api.ListDocumentsHandler)
		v1.DELETE("/documents/:id", api.DeleteDocumentHandler)

		v1.POST("/chat", api.SendMessageHandler)
		v1.GET("/chats/:id/messages", api.ChatHistoryHandler)
	}
}

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/itihub/backend/internal/handlers"
	"github.com/itihub/backend/internal/middleware"
	pkgauth "github.com/itihub/backend/pkg/auth"
)

func APIEndpoints(
	r *gin.Engine,
	validator pkgauth.TokenValidator,
	rdb *redis.Client,
	authH *handlers.AuthHandler,
	wsH *handlers.ChatWebSocketHandler,
	historyH *handlers.HTTPMessageHandler,
	notificationH *handlers.NotificationHandler,
	groupH *handlers.GroupHandler,
	socialH *handlers.SocialHandler,
	batchH *handlers.BatchHandler,
) {
	// Auth endpoints
	auth := r.Group("/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
		auth.POST("/logout", authH.Logout)
	}

	// WebSocket endpoints: токен в query-параметре рукопожатия
	wsGroup := r.Group("/ws", middleware.WSAuthMiddleware(validator, rdb))
	{
		wsGroup.GET("/chat/:group_id", wsH.HandleGroupChat)
		wsGroup.GET("/private/:user_id", wsH.HandlePrivateChat)
	}

	// API endpoints
	api := r.Group("/api/v1", middleware.AuthMiddleware(validator, rdb))
	{
		chat := api.Group("/chat")
		{
			chat.POST("/groups", groupH.CreateGroup)
			chat.GET("/groups/:group_id", groupH.GetGroup)
			chat.POST("/groups/:group_id/members/:user_id", groupH.AddMember)
			chat.DELETE("/groups/:group_id/members/:user_id", groupH.RemoveMember)
			chat.POST("/groups/:group_id/supervisors/:user_id", groupH.PromoteSupervisor)

			chat.GET("/groups/:group_id/messages", historyH.GetGroupMessages)
			chat.GET("/private/:user_id/messages", historyH.GetPrivateMessages)
		}

		api.POST("/users/:user_id/follow", socialH.Follow)

		batches := api.Group("/batches")
		{
			batches.POST("", batchH.CreateBatch)
			batches.POST("/:batch_id/students", batchH.AssignStudents)
			batches.POST("/:batch_id/end", batchH.EndBatch)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", notificationH.List)
			notifications.PATCH("/:id/read", notificationH.MarkRead)
			notifications.PATCH("/read-all", notificationH.MarkAllRead)
			notifications.DELETE("/:id", notificationH.Delete)
			notifications.DELETE("", notificationH.Clear)
		}
	}
}

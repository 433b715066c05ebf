package api

import (
	"net/http"

	"taskup-backend/internal/auth/delivery"
	"taskup-backend/pkg/metrics"
	"taskup-backend/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	authHandler := delivery.NewAuthHandler(h.authUsecase)
	requireAuth := delivery.AuthMiddleware(h.authUsecase)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/google", authHandler.GoogleSignIn)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", requireAuth, authHandler.Me)
			auth.POST("/logout", authHandler.Logout)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(requireAuth)
		{
			fcm.POST("/register", authHandler.RegisterFCMToken)
			fcm.DELETE("/:token", authHandler.UnregisterFCMToken)
		}

		api.GET("/users/search", requireAuth, authHandler.SearchUsers)

		// Everything below needs a signed in user
		protected := api.Group("")
		protected.Use(requireAuth)

		// join and accept take guessable secrets
		guess := func(name string) gin.HandlerFunc {
			return ratelimit.Middleware(h.joinLimiter, name, ratelimit.UserKeyFunc)
		}

		boards := protected.Group("/boards")
		{
			boards.GET("", h.boardHandler.ListBoards)
			boards.POST("", h.boardHandler.CreateBoard)
			boards.POST("/join", guess("join"), h.boardHandler.JoinBoard)
			boards.GET("/:id", h.boardHandler.GetBoard)
			boards.DELETE("/:id", h.boardHandler.DeleteBoard)
			boards.POST("/:id/join-code", h.boardHandler.RegenerateJoinCode)

			boards.POST("/:id/columns", h.boardHandler.AddColumn)
			boards.PUT("/:id/columns/orders", h.boardHandler.ReorderColumns)

			boards.GET("/:id/members", h.memberHandler.ListMembers)
			boards.DELETE("/:id/members/:userId", h.memberHandler.RemoveMember)
			boards.POST("/:id/members/:userId/kick", h.memberHandler.KickMember)
			boards.POST("/:id/members/:userId/ban", h.memberHandler.BanMember)
			boards.PUT("/:id/members/:userId/role", h.memberHandler.UpdateRole)
			boards.GET("/:id/bans", h.memberHandler.ListBans)
			boards.DELETE("/:id/bans/:userId", h.memberHandler.UnbanMember)
			boards.POST("/:id/invitations", h.memberHandler.Invite)
		}

		protected.POST("/invitations/:token/accept", guess("accept"), h.memberHandler.AcceptInvitation)

		columns := protected.Group("/columns")
		{
			columns.POST("/:id/tasks", h.taskHandler.CreateTask)
			columns.PUT("/:id/tasks/orders", h.taskHandler.ReorderTasks)
		}

		tasks := protected.Group("/tasks")
		{
			tasks.PUT("/:id", h.taskHandler.UpdateTask)
			tasks.DELETE("/:id", h.taskHandler.DeleteTask)
			tasks.POST("/:id/complete", h.taskHandler.CompleteTask)
			tasks.POST("/:id/reopen", h.taskHandler.ReopenTask)
			tasks.POST("/:id/move", h.taskHandler.MoveTask)
			tasks.POST("/:id/assignees", h.taskHandler.Assign)
			tasks.GET("/:id/assignees", h.taskHandler.ListAssignees)
			tasks.DELETE("/:id/assignees/:userId", h.taskHandler.Unassign)
			tasks.POST("/:id/comments", h.taskHandler.AddComment)
			tasks.GET("/:id/comments", h.taskHandler.ListComments)
			tasks.POST("/:id/attachments", h.taskHandler.UploadAttachment)
			tasks.GET("/:id/attachments", h.taskHandler.ListAttachments)
		}

		protected.GET("/attachments/:id", h.taskHandler.DownloadAttachment)
	}
}

package router

import (
	"github.com/ekinyalgin/curiora/internal/handlers"
	"github.com/ekinyalgin/curiora/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	commentHandler := handlers.NewCommentHandler()
	voteHandler := handlers.NewVoteHandler()
	reportHandler := handlers.NewReportHandler()
	tagHandler := handlers.NewTagHandler()
	notificationHandler := handlers.NewNotificationHandler()

	api := r.Group("/api")

	// Public routes
	api.GET("/posts", postHandler.List)
	api.GET("/posts/:pid", postHandler.Detail)
	api.GET("/tags", tagHandler.List)
	api.GET("/comments", commentHandler.List)

	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)
	api.GET("/me", authHandler.Me)

	// Authenticated routes
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/comments", commentHandler.Create)
		authorized.PUT("/comments/:id", commentHandler.Update)
		// Owners may soft-delete their own comments; the service
		// enforces the moderator-only transitions.
		authorized.PATCH("/comments/:id", commentHandler.Patch)
		authorized.POST("/votes", voteHandler.Cast)
		authorized.POST("/reports", reportHandler.Create)

		authorized.POST("/tags/:id/follow", tagHandler.ToggleFollow)
		authorized.GET("/tags/following", tagHandler.Following)

		authorized.GET("/notifications", notificationHandler.List)
		authorized.POST("/notifications/:id/read", notificationHandler.Read)
		authorized.POST("/notifications/read-all", notificationHandler.ReadAll)
	}

	// Moderation routes
	moderation := api.Group("/")
	moderation.Use(middleware.ModeratorRequired())
	{
		moderation.DELETE("/comments/:id", commentHandler.Delete)

		moderation.GET("/reports", reportHandler.List)
		moderation.PUT("/reports/:id", reportHandler.Resolve)
		moderation.DELETE("/reports/:id", reportHandler.Delete)
	}
}

package router

import (
	"github.com/gin-gonic/gin"
	"github.com/tawargy/project-manager/internal/handler"
	"github.com/tawargy/project-manager/internal/middleware"
	"gorm.io/gorm"
)

type Deps struct {
	DB               *gorm.DB
	JWTSecret        string
	AuthHandler      *handler.AuthHandler
	UserHandler      *handler.UserHandler
	ProjectHandler   *handler.ProjectHandler
	TaskHandler      *handler.TaskHandler
	DashboardHandler *handler.DashboardHandler
	WSHandler        *handler.WSHandler
}

func Setup(r *gin.Engine, deps Deps) {
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")

	// Public routes (no auth)
	api.POST("/user", deps.UserHandler.Signup)
	api.POST("/auth/login", deps.AuthHandler.Login)

	// Authenticated routes
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(deps.JWTSecret, deps.DB))
	{
		// Users
		authed.GET("/user", deps.UserHandler.List)
		authed.GET("/user/me", deps.UserHandler.Me)
		authed.PATCH("/user/:id", deps.UserHandler.UpdateRole)
		authed.DELETE("/user/:id", deps.UserHandler.Delete)

		// Projects
		projects := authed.Group("/projects")
		{
			projects.GET("", deps.ProjectHandler.List)
			projects.POST("", deps.ProjectHandler.Create)
			projects.GET("/:id", deps.ProjectHandler.GetDetail)
			projects.PUT("/:id", deps.ProjectHandler.Update)
			projects.DELETE("/:id", deps.ProjectHandler.Delete)
		}

		// Tasks
		tasks := authed.Group("/tasks")
		{
			tasks.GET("", deps.TaskHandler.List)
			tasks.POST("", deps.TaskHandler.Create)
			tasks.GET("/:id", deps.TaskHandler.GetDetail)
			tasks.PUT("/:id", deps.TaskHandler.Update)
			tasks.DELETE("/:id", deps.TaskHandler.Delete)
		}

		// Dashboard
		authed.GET("/dashboard/stats", deps.DashboardHandler.GetStats)

		// Admin
		authed.GET("/admin/operation-logs", deps.UserHandler.ListOperationLogs)
	}

	// Task change notifications. The auth middleware accepts ?token= here
	// since browsers cannot set headers on the WebSocket handshake.
	wsGroup := r.Group("/ws")
	wsGroup.Use(middleware.AuthMiddleware(deps.JWTSecret, deps.DB))
	wsGroup.GET("/tasks", deps.WSHandler.Tasks)
}

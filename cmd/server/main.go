package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/tawargy/project-manager/internal/config"
	"github.com/tawargy/project-manager/internal/handler"
	"github.com/tawargy/project-manager/internal/model"
	"github.com/tawargy/project-manager/internal/router"
	"github.com/tawargy/project-manager/internal/service"
	"github.com/tawargy/project-manager/internal/ws"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	// Load config
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Database
	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.Task{},
		&model.OperationLog{},
	); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	// Redis (optional; without it task notifications stay in-process)
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	// Notification hub
	hub := ws.NewHub(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	// Services
	userService := service.NewUserService(db, cfg.JWT.Secret, cfg.JWT.ExpireHours)
	projectService := service.NewProjectService(db)
	taskService := service.NewTaskService(db, hub)
	auditService := service.NewAuditService(db)

	// Handlers
	authHandler := handler.NewAuthHandler(userService)
	userHandler := handler.NewUserHandler(userService, auditService)
	projectHandler := handler.NewProjectHandler(projectService, auditService)
	taskHandler := handler.NewTaskHandler(taskService, auditService)
	dashboardHandler := handler.NewDashboardHandler(db)
	wsHandler := handler.NewWSHandler(hub)

	// Gin engine
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// Setup routes
	router.Setup(r, router.Deps{
		DB:               db,
		JWTSecret:        cfg.JWT.Secret,
		AuthHandler:      authHandler,
		UserHandler:      userHandler,
		ProjectHandler:   projectHandler,
		TaskHandler:      taskHandler,
		DashboardHandler: dashboardHandler,
		WSHandler:        wsHandler,
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server run: %v", err)
	}
}

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fieldops/dispatch-backend-go/internal/config"
	"github.com/fieldops/dispatch-backend-go/internal/handler"
	"github.com/fieldops/dispatch-backend-go/internal/middleware"
	"github.com/fieldops/dispatch-backend-go/internal/repository"
	"github.com/fieldops/dispatch-backend-go/internal/service"
	"github.com/fieldops/dispatch-backend-go/internal/telegram"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, db *sql.DB) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(), gin.Recovery())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	taskRepo := repository.NewTaskRepository(db)
	integrationRepo := repository.NewIntegrationRepository(db)
	chat := telegram.NewClient(cfg.TelegramToken)
	dispatch := service.NewDispatchService(taskRepo, integrationRepo, chat, service.NewWebhookClient())

	webhookHandler := handler.NewWebhookHandler(dispatch)
	taskHandler := handler.NewTaskHandler(taskRepo, dispatch)
	integrationHandler := handler.NewIntegrationHandler(integrationRepo)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Dispatch Backend API is running",
		})
	})

	// Telegram webhook（总是返回 200，防止平台重试风暴）
	webhook := r.Group("/telegram/webhook/" + cfg.WebhookSecret)
	{
		webhook.POST("", webhookHandler.Receive)
		webhook.GET("", webhookHandler.Status)
	}

	// 管理 API
	api := r.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTSecret), middleware.RateLimit(120, time.Minute))
	{
		tasks := api.Group("/tasks")
		{
			tasks.POST("", taskHandler.DispatchTask)
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/:id", taskHandler.GetTask)
		}

		integrations := api.Group("/integrations")
		{
			integrations.POST("", integrationHandler.CreateIntegration)
			integrations.GET("", integrationHandler.ListIntegrations)
			integrations.GET("/:id", integrationHandler.GetIntegration)
			integrations.PATCH("/:id/settings", integrationHandler.UpdateSettings)
		}
	}

	return r
}

package main

import (
	"log"
	"time"

	"github.com/fieldops/dispatch-backend-go/internal/api"
	"github.com/fieldops/dispatch-backend-go/internal/config"
	"github.com/fieldops/dispatch-backend-go/internal/database"
	"github.com/fieldops/dispatch-backend-go/internal/repository"
	"github.com/fieldops/dispatch-backend-go/internal/scheduler"
	"github.com/fieldops/dispatch-backend-go/internal/telegram"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化数据库
	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	db := database.GetDB()

	// 启动提醒任务
	reminder := scheduler.NewReminder(
		repository.NewTaskRepository(db),
		telegram.NewClient(cfg.TelegramToken),
		time.Duration(cfg.ReminderAfterMinutes)*time.Minute,
	)
	if err := reminder.Start(cfg.ReminderSpec); err != nil {
		log.Fatal("Failed to start reminder scheduler:", err)
	}
	defer reminder.Stop()

	// 初始化路由
	router := api.SetupRouter(cfg, db)

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

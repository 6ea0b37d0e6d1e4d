package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Port          string `yaml:"port"`
	DBPath        string `yaml:"db_path"`
	JWTSecret     string `yaml:"jwt_secret"`
	TelegramToken string `yaml:"telegram_token"`
	WebhookSecret string `yaml:"webhook_secret"` // path token for the Telegram webhook route

	// Reminder sweep for tasks stuck in "sent"
	ReminderSpec         string `yaml:"reminder_spec"`
	ReminderAfterMinutes int    `yaml:"reminder_after_minutes"`
}

// Load 加载配置：先读可选的 YAML 文件，再用环境变量覆盖
func Load() *Config {
	cfg := &Config{
		Port:                 ":8080",
		DBPath:               "./data/dispatch.db",
		JWTSecret:            "your-secret-key-change-in-production",
		ReminderSpec:         "*/10 * * * *",
		ReminderAfterMinutes: 60,
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read config file %s: %v", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Fatalf("Failed to parse config file %s: %v", path, err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		cfg.TelegramToken = v
	}
	if v := os.Getenv("WEBHOOK_SECRET"); v != "" {
		cfg.WebhookSecret = v
	}
	if v := os.Getenv("REMINDER_SPEC"); v != "" {
		cfg.ReminderSpec = v
	}
	if v := os.Getenv("REMINDER_AFTER_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ReminderAfterMinutes = n
		}
	}

	return cfg
}

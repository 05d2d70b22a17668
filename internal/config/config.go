package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAutosaveInterval   = 30 * time.Second
	defaultSessionIdleTimeout = 30 * time.Minute
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr         string
	Port               string
	DatabaseDriver     string
	DatabasePath       string
	DatabaseDSN        string
	SessionSecret      string
	JWTSecret          string
	GinMode            string
	RedisURL           string
	LogLevel           string
	AutosaveInterval   time.Duration
	SessionIdleTimeout time.Duration
	SuperRootUserName  string
	SuperRootPassword  string
	SecureCookies      bool
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 若工作目录存在 .env 文件，会先将其中的变量载入环境（已存在的环境变量优先）。
func Load() AppConfig {
	_ = godotenv.Load()

	port := env("PORT", "8080")

	listenAddr := env("LISTEN_ADDR", "")
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	driver := strings.ToLower(env("DATABASE_DRIVER", "sqlite"))
	if driver != "postgres" {
		driver = "sqlite"
	}

	return AppConfig{
		ListenAddr:         listenAddr,
		Port:               port,
		DatabaseDriver:     driver,
		DatabasePath:       env("DATABASE_PATH", "inkwell.db"),
		DatabaseDSN:        env("DATABASE_DSN", ""),
		SessionSecret:      env("SESSION_SECRET", "inkwell-dev-secret"),
		JWTSecret:          env("JWT_SECRET", ""),
		GinMode:            env("GIN_MODE", "release"),
		RedisURL:           env("REDIS_URL", ""),
		LogLevel:           env("LOG_LEVEL", "info"),
		AutosaveInterval:   duration("AUTOSAVE_INTERVAL", defaultAutosaveInterval),
		SessionIdleTimeout: duration("EDIT_SESSION_IDLE_TIMEOUT", defaultSessionIdleTimeout),
		SuperRootUserName:  env("SUPER_ROOT_USER_NAME", ""),
		SuperRootPassword:  env("SUPER_ROOT_PASSWORD", ""),
		SecureCookies:      boolean("COOKIE_SECURE", false),
	}
}

// DSN 返回当前驱动对应的连接串：sqlite 使用文件路径，postgres 使用 DATABASE_DSN。
func (c AppConfig) DSN() string {
	if c.DatabaseDriver == "postgres" {
		return c.DatabaseDSN
	}
	return c.DatabasePath
}

func env(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func duration(key string, fallback time.Duration) time.Duration {
	raw := env(key, "")
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func boolean(key string, fallback bool) bool {
	parsed, err := strconv.ParseBool(env(key, ""))
	if err != nil {
		return fallback
	}
	return parsed
}

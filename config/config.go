package config

import (
	"fmt"
	"os"
	"strconv"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config holds everything read from the environment once at startup.
type Config struct {
	Port           string
	PublicBaseURL  string
	FreezeOnPause  bool
	EmailHost      string
	EmailPort      int
	EmailUser      string
	EmailPass      string
	EmailFrom      string
	EmailFromName  string
	TrustedProxies []string
}

func Load() *Config {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		FreezeOnPause: getEnvBool("SESSION_FREEZE_ON_PAUSE", false),
		EmailHost:     getEnv("EMAIL_HOST", "smtp.sendgrid.net"),
		EmailPort:     getEnvInt("EMAIL_PORT", 587),
		EmailUser:     getEnv("EMAIL_USER", "apikey"),
		EmailPass:     os.Getenv("EMAIL_PASS"),
		EmailFrom:     os.Getenv("EMAIL_FROM"),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "Wanam Sa Bukid Restaurant"),
		TrustedProxies: []string{
			"127.0.0.1", "localhost",
		},
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:" + cfg.Port
	}
	return cfg
}

// InitDB opens the database connection. DB_DRIVER=sqlite gives a local
// file database for development; anything else is treated as MySQL.
func InitDB() (*gorm.DB, error) {
	driver := getEnv("DB_DRIVER", "mysql")

	if driver == "sqlite" {
		path := getEnv("DB_PATH", "wanamsabukid.db")
		return gorm.Open(sqlite.Open(path), &gorm.Config{})
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		getEnv("DB_USER", "root"),
		os.Getenv("DB_PASSWORD"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "3306"),
		getEnv("DB_DATABASE", "WanamSaBukidDB"),
	)
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port                 string
	DBUri                string
	RedisAddr            string
	RedisPassword        string
	TicketSecret         string
	TicketTTL            time.Duration
	RematchRedirectDelay time.Duration
	SessionLingerDelay   time.Duration
	LobbySweepInterval   time.Duration
	LobbySweepAge        time.Duration
	AllowedOrigins       []string
}

var AppConfig *Config

func LoadConfig() {
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")

	AppConfig = &Config{
		Port:                 GetEnv("PORT", "8080"),
		DBUri:                GetEnv("DB_URI", ""),
		RedisAddr:            GetEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:        GetEnv("REDIS_PASSWORD", ""),
		TicketSecret:         GetEnv("TICKET_SECRET", "dev-ticket-secret"),
		TicketTTL:            time.Duration(GetEnvAsInt("TICKET_TTL_MINUTES", 240)) * time.Minute,
		RematchRedirectDelay: time.Duration(GetEnvAsInt("REMATCH_REDIRECT_DELAY_MS", 1500)) * time.Millisecond,
		SessionLingerDelay:   time.Duration(GetEnvAsInt("SESSION_LINGER_SECONDS", 5)) * time.Second,
		LobbySweepInterval:   time.Duration(GetEnvAsInt("LOBBY_SWEEP_INTERVAL_MINUTES", 10)) * time.Minute,
		LobbySweepAge:        time.Duration(GetEnvAsInt("LOBBY_SWEEP_AGE_MINUTES", 60)) * time.Minute,
		AllowedOrigins:       []string{frontendURL, "http://localhost:5173"},
	}

	log.Printf("Config loaded: Port=%s, RematchRedirectDelay=%v, AllowedOrigins=%v",
		AppConfig.Port, AppConfig.RematchRedirectDelay, AppConfig.AllowedOrigins)
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	ServerPort string

	// Sync engine tunables.
	GracePeriodSec  int
	CodeCooldownSec int
	MaxParties      int
	MaxPartyMembers int
	ChatTailSize    int
}

func Load() *Config {
	// Best effort; the environment wins over .env either way.
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "watchparty"),
		JWTSecret:  getEnv("JWT_SECRET", "super-secret-key-change-me"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		GracePeriodSec:  getEnvInt("GRACE_PERIOD_SEC", 30),
		CodeCooldownSec: getEnvInt("CODE_COOLDOWN_SEC", 300),
		MaxParties:      getEnvInt("MAX_PARTIES", 1000),
		MaxPartyMembers: getEnvInt("MAX_PARTY_MEMBERS", 50),
		ChatTailSize:    getEnvInt("CHAT_TAIL_SIZE", 100),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

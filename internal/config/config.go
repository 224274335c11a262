package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the development fallback for JWT_SECRET. Token
// signing and verification must both resolve to this when the variable is
// unset, or every issued token would fail verification.
const DefaultJWTSecret = "supersecretkey"

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	ServerPort string
	JWTSecret  string
	DataRoot   string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "tracker_user"),
		DBPassword: getEnv("DB_PASSWORD", "tracker_pass"),
		DBName:     getEnv("DB_NAME", "tracker_db"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		JWTSecret:  getEnv("JWT_SECRET", DefaultJWTSecret),
		DataRoot:   getEnv("DATA_ROOT", "./data"),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

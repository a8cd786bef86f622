// Package config loads environment-driven application configuration
// and owns the database handle initialization.
package config

import (
	"log"
	"os"
	"strconv"
)

// Transport selects how interactions reach the bot.
const (
	TransportWebhook = "webhook"
	TransportGateway = "gateway"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via the environment.
type AppConfig struct {
	AppPort   string
	GinMode   string
	Transport string
	// Discord application credentials
	DiscordToken        string
	DiscordAppID        string
	DiscordPublicKey    string // hex-encoded Ed25519 public key, required for webhook transport
	DiscordClientID     string
	DiscordClientSecret string
	OAuthRedirectURL    string
	StateSecret         string
	// Sign pack
	SignPackPath string
	// Database
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Redis for interaction dedup (optional)
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration from environment variables. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.DiscordToken == "" {
		log.Fatal("DISCORD_TOKEN must be set in environment variables")
	}
	if cfg.Transport == TransportWebhook && cfg.DiscordPublicKey == "" {
		log.Fatal("DISCORD_PUBLIC_KEY must be set for the webhook transport")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

func applyDefaults(out *AppConfig) {
	out.AppPort = "8080"
	out.GinMode = "release"
	out.Transport = TransportWebhook
	out.SignPackPath = "signs.json"
	out.DBHost = "localhost"
	out.DBPort = "5432"
	out.DBUser = "postgres"
	out.DBName = "enoa"
	out.RedisPort = 6379
	out.LogLevel = "info"
}

func applyEnvOverrides(out *AppConfig) {
	out.AppPort = getEnv("APP_PORT", out.AppPort)
	out.GinMode = getEnv("GIN_MODE", out.GinMode)
	out.Transport = getEnv("TRANSPORT", out.Transport)

	out.DiscordToken = getEnv("DISCORD_TOKEN", out.DiscordToken)
	out.DiscordAppID = getEnv("DISCORD_APPLICATION_ID", out.DiscordAppID)
	out.DiscordPublicKey = getEnv("DISCORD_PUBLIC_KEY", out.DiscordPublicKey)
	out.DiscordClientID = getEnv("DISCORD_CLIENT_ID", out.DiscordClientID)
	out.DiscordClientSecret = getEnv("DISCORD_CLIENT_SECRET", out.DiscordClientSecret)
	out.OAuthRedirectURL = getEnv("OAUTH_REDIRECT_URL", out.OAuthRedirectURL)
	out.StateSecret = getEnv("STATE_SECRET", out.StateSecret)

	out.SignPackPath = getEnv("SIGN_PACK_PATH", out.SignPackPath)

	out.DatabaseURI = getEnv("DATABASE_URI", out.DatabaseURI)
	out.DBHost = getEnv("DB_HOST", out.DBHost)
	out.DBPort = getEnv("DB_PORT", out.DBPort)
	out.DBUser = getEnv("DB_USER", out.DBUser)
	out.DBPassword = getEnv("DB_PASSWORD", out.DBPassword)
	out.DBName = getEnv("DB_NAME", out.DBName)

	out.RedisHost = getEnv("REDIS_HOST", out.RedisHost)
	out.RedisPort = getEnvInt("REDIS_PORT", out.RedisPort)
	out.RedisDB = getEnvInt("REDIS_DB", out.RedisDB)
	out.RedisPassword = getEnv("REDIS_PASSWORD", out.RedisPassword)

	out.LogLevel = getEnv("LOG_LEVEL", out.LogLevel)
	out.LogPath = getEnv("LOG_PATH", out.LogPath)
	out.LogMaxSizeMB = getEnvInt("LOG_MAX_SIZE_MB", out.LogMaxSizeMB)
	out.LogMaxBackups = getEnvInt("LOG_MAX_BACKUPS", out.LogMaxBackups)
	out.LogMaxAgeDays = getEnvInt("LOG_MAX_AGE_DAYS", out.LogMaxAgeDays)
	out.LogCompress = getEnvBool("LOG_COMPRESS", out.LogCompress)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ExtractorGemini  = "gemini"
	ExtractorWebhook = "webhook"
	ExtractorRules   = "rules"
)

type Config struct {
	AppPort        string
	DatabaseURL    string
	AllowedOrigins []string

	LogLevel  string
	LogFormat string

	Extractor        string
	GeminiAPIKey     string
	GeminiModel      string
	ExtractorURL     string
	ExtractorTimeout time.Duration

	SMSAPIURL string
	SMSUserID string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ImportLockTTL time.Duration

	MaxUploadBytes int64

	// EnvFileLoaded is false when no .env file was found.
	EnvFileLoaded bool
}

// LoadConfig reads .env if present, then the environment. An empty DatabaseURL
// selects the in-memory stores and an empty RedisAddr the in-process import lock.
func LoadConfig() *Config {
	err := godotenv.Load()

	return &Config{
		AppPort:        getEnv("APP_PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		Extractor:        strings.ToLower(getEnv("EXTRACTOR", ExtractorGemini)),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		ExtractorURL:     getEnv("EXTRACTOR_URL", ""),
		ExtractorTimeout: getDuration("EXTRACTOR_TIMEOUT", 30*time.Second),

		SMSAPIURL: getEnv("SMS_API_URL", "https://luco-sms-api.onrender.com"),
		SMSUserID: getEnv("SMS_USER_ID", "1"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),
		ImportLockTTL: getDuration("IMPORT_LOCK_TTL", 5*time.Minute),

		MaxUploadBytes: int64(getInt("MAX_UPLOAD_BYTES", 10<<20)),

		EnvFileLoaded: err == nil,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

// getDuration accepts Go durations ("45s") or a plain number of seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	BackendBaseURL  string
	CORSAllowOrigin []string
	RequestTimeout  time.Duration
	PollInterval    time.Duration
	PollMaxAttempts int
	SessionCookie   string
	SessionSecure   bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	backendURL := strings.TrimRight(getEnv("BACKEND_BASE_URL", "http://localhost:3000/api"), "/")

	if env == "production" && os.Getenv("BACKEND_BASE_URL") == "" {
		log.Printf("BACKEND_BASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		BackendBaseURL:  backendURL,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		RequestTimeout:  getDurationSeconds("REQUEST_TIMEOUT_SECONDS", 15*time.Second),
		PollInterval:    getDurationSeconds("POLL_INTERVAL_SECONDS", 2*time.Second),
		PollMaxAttempts: getInt("POLL_MAX_ATTEMPTS", 30),
		SessionCookie:   getEnv("SESSION_COOKIE", "dashboard_session"),
		SessionSecure:   env == "production",
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getDurationSeconds(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return def
	}
	return time.Duration(parsed) * time.Second
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

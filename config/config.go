package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port                    string
	CORSOrigins             []string
	JWTSecret               string
	AdminEmail              string
	AdminPassword           string
	FirebaseCredentialsPath string
	GeminiAPIKey            string
	GeminiModel             string
	GeminiFallbackModel     string
	KafkaBrokers            []string
	RulesPath               string
	ProbeTimeout            time.Duration
	AITimeout               time.Duration
	DefaultListLimit        int
}

func Load() Config {
	return Config{
		Port:                    os.Getenv("PORT"),
		CORSOrigins:             splitList(getenv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		JWTSecret:               getenv("JWT_SECRET", "fallback-secret"),
		AdminEmail:              getenv("ADMIN_EMAIL", "admin@company.com"),
		AdminPassword:           getenv("ADMIN_PASSWORD", "admin123"),
		FirebaseCredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
		GeminiAPIKey:            os.Getenv("GEMINI_API_KEY"),
		GeminiModel:             getenv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiFallbackModel:     getenv("GEMINI_FALLBACK_MODEL", "gemini-1.5-flash-8b"),
		KafkaBrokers:            splitList(os.Getenv("KAFKA_BROKERS")),
		RulesPath:               os.Getenv("ANALYSIS_RULES_PATH"),
		ProbeTimeout:            getduration("PROBE_TIMEOUT", 5*time.Second),
		AITimeout:               getduration("AI_TIMEOUT", 30*time.Second),
		DefaultListLimit:        getint("DEFAULT_LIST_LIMIT", 50),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

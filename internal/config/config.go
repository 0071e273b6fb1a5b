package config

import (
	"os"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Keycloak KeycloakConfig
	Ledger   LedgerConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Port string
}

type KeycloakConfig struct {
	BaseURL string
	Realm   string
}

type LedgerConfig struct {
	BaseURL  string
	Database string
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Port: getenv("PORT", "8080"),
		},
		Keycloak: KeycloakConfig{
			BaseURL: getenv("KEYCLOAK_URL", "http://keycloak:8080"),
			Realm:   getenv("KEYCLOAK_REALM", "trace-ops"),
		},
		Ledger: LedgerConfig{
			BaseURL:  getenv("COUCHDB_URL", "http://couchdb:5984"),
			Database: getenv("COUCHDB_DATABASE", "traceops_traceops"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
			AllowCredentials: os.Getenv("CORS_ALLOW_CREDENTIALS") == "true",
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

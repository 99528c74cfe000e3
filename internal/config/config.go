// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every runtime setting the register consumes. Strings for
// identifiers and secrets, durations for windows derived from integer
// environment variables.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	Stores         []string      // fixed set of store names tickets can target
	AlertThreshold time.Duration // pending wait at which a ticket escalates
	CacheTTL       time.Duration // table cache expiry; 0 = only explicit invalidation

	SharedSecret     string // plain shared secret gating the register ("" with no hash = open mode)
	SharedSecretHash string // bcrypt hash of the shared secret, preferred over the plain form
	SessionSecret    string // secret used to sign session tokens
	SessionTTLMin    int    // session token time-to-live in minutes

	DBUser     string // sheet backend: database username
	DBPass     string // sheet backend: database password (optional)
	DBHost     string // sheet backend: database host
	DBPort     string // sheet backend: database port
	DBName     string // sheet backend: database name
	SheetTable string // sheet backend: table holding the sheet rows
}

// Load reads configuration from the environment. Missing required variables
// abort startup with a fatal log message; optional ones fall back to the
// documented defaults.
func Load() Config {
	return Config{
		Env:  must("APP_ENV"),
		Port: must("APP_PORT"),

		Stores:         splitList(must("STORE_NAMES")),
		AlertThreshold: time.Duration(envInt("ALERT_THRESHOLD_MIN", 5)) * time.Minute,
		CacheTTL:       envDur("CACHE_TTL", 0),

		SharedSecret:     os.Getenv("SHARED_SECRET"),
		SharedSecretHash: os.Getenv("SHARED_SECRET_HASH"),
		SessionSecret:    must("SESSION_SECRET"),
		SessionTTLMin:    envInt("SESSION_TTL_MIN", 720),

		DBUser:     must("DB_USER"),
		DBPass:     os.Getenv("DB_PASS"),
		DBHost:     must("DB_HOST"),
		DBPort:     must("DB_PORT"),
		DBName:     must("DB_NAME"),
		SheetTable: envStr("SHEET_TABLE", "sheet_rows"),
	}
}

// OpenMode reports whether the deployment runs without a shared secret, in
// which case the session gate authorizes everyone. This is an intentional
// deployment mode, not a misconfiguration.
func (c Config) OpenMode() bool {
	return c.SharedSecret == "" && c.SharedSecretHash == ""
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}

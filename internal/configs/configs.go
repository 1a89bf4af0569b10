/*
Package configs is responsible for loading and parsing the application's configuration settings.

It configures server parameters by reading operating system environment variables,
including the running environment, the chat listen port, the ops HTTP port,
the per-connection idle timeout, and the accept-loop rate limits.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig contains all configuration parameters required for the application to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int
	OpsPort     int

	// IdleTimeout is how long a connection may stay silent before the server
	// treats it as dead and runs disconnect cleanup.
	IdleTimeout time.Duration

	// Accept-loop rate limiting (per client IP).
	AcceptRate  float64
	AcceptBurst int

	// CORS allowed origins for the ops HTTP endpoint.
	AllowedOrigins []string
}

// LoadConfig reads and parses the application configuration from environment variables.
// It provides default values for each configuration item and performs necessary type
// conversions and validation. It returns a pointer to the AppConfig struct and any
// error encountered.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	// Environment
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// Port
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// OpsPort
	opsPortStr := os.Getenv("OPS_PORT")
	if opsPortStr == "" {
		opsPortStr = "8081"
	}
	opsPort, err := strconv.Atoi(opsPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid OPS_PORT environment variable: %w", err)
	}
	cfg.OpsPort = opsPort

	if cfg.OpsPort == cfg.Port {
		return nil, fmt.Errorf("OPS_PORT must differ from PORT (both set to %d)", cfg.Port)
	}

	// --- Connection Settings ---
	// IdleTimeout
	idleStr := os.Getenv("IDLE_TIMEOUT_SECONDS")
	if idleStr == "" {
		idleStr = "60"
	}
	idleSeconds, err := strconv.Atoi(idleStr)
	if err != nil || idleSeconds <= 0 {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT_SECONDS environment variable: %q", idleStr)
	}
	cfg.IdleTimeout = time.Duration(idleSeconds) * time.Second

	// --- Accept-Loop Rate Limiting ---
	// AcceptRate
	rateStr := os.Getenv("ACCEPT_RATE")
	if rateStr == "" {
		rateStr = "5"
	}
	acceptRate, err := strconv.ParseFloat(rateStr, 64)
	if err != nil || acceptRate <= 0 {
		return nil, fmt.Errorf("invalid ACCEPT_RATE environment variable: %q", rateStr)
	}
	cfg.AcceptRate = acceptRate

	// AcceptBurst
	burstStr := os.Getenv("ACCEPT_BURST")
	if burstStr == "" {
		burstStr = "10"
	}
	acceptBurst, err := strconv.Atoi(burstStr)
	if err != nil || acceptBurst <= 0 {
		return nil, fmt.Errorf("invalid ACCEPT_BURST environment variable: %q", burstStr)
	}
	cfg.AcceptBurst = acceptBurst

	// --- Ops Endpoint Settings ---
	// AllowedOrigins
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	return cfg, nil
}

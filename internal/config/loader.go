package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Store backend names accepted by SALON_STORE.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config captures environment driven configuration values for the salon
// scheduling service.
type Config struct {
	HTTPPort            int
	Store               string
	SQLiteDSN           string
	LogLevel            string
	BufferBeforeMinutes int
	BufferAfterMinutes  int
	OpenHour            int
	CloseHour           int
	TravelWindowMinutes int
	HomeTravelMinutes   int
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults matching normal salon operation;
// required and malformed values are accumulated and reported together so a
// misconfigured deployment fails with one complete message.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:            8080,
		Store:               StoreMemory,
		LogLevel:            "info",
		BufferBeforeMinutes: 0,
		BufferAfterMinutes:  15,
		OpenHour:            9,
		CloseHour:           20,
		TravelWindowMinutes: 30,
		HomeTravelMinutes:   30,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("SALON_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "SALON_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if store := strings.ToLower(strings.TrimSpace(os.Getenv("SALON_STORE"))); store != "" {
		if store != StoreMemory && store != StoreSQLite {
			invalid = append(invalid, "SALON_STORE")
		} else {
			cfg.Store = store
		}
	}

	cfg.SQLiteDSN = strings.TrimSpace(os.Getenv("SALON_SQLITE_DSN"))
	if cfg.Store == StoreSQLite && cfg.SQLiteDSN == "" {
		missing = append(missing, "SALON_SQLITE_DSN")
	}

	if level := strings.TrimSpace(os.Getenv("SALON_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	loadMinutes := func(name string, target *int) {
		value := strings.TrimSpace(os.Getenv(name))
		if value == "" {
			return
		}
		minutes, err := strconv.Atoi(value)
		if err != nil || minutes < 0 {
			invalid = append(invalid, name)
			return
		}
		*target = minutes
	}
	loadMinutes("SALON_BUFFER_BEFORE_MINUTES", &cfg.BufferBeforeMinutes)
	loadMinutes("SALON_BUFFER_AFTER_MINUTES", &cfg.BufferAfterMinutes)
	loadMinutes("SALON_TRAVEL_WINDOW_MINUTES", &cfg.TravelWindowMinutes)
	loadMinutes("SALON_HOME_TRAVEL_MINUTES", &cfg.HomeTravelMinutes)

	loadHour := func(name string, target *int) {
		value := strings.TrimSpace(os.Getenv(name))
		if value == "" {
			return
		}
		hour, err := strconv.Atoi(value)
		if err != nil || hour < 0 || hour > 24 {
			invalid = append(invalid, name)
			return
		}
		*target = hour
	}
	loadHour("SALON_OPEN_HOUR", &cfg.OpenHour)
	loadHour("SALON_CLOSE_HOUR", &cfg.CloseHour)

	if cfg.CloseHour <= cfg.OpenHour {
		invalid = append(invalid, "SALON_CLOSE_HOUR")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

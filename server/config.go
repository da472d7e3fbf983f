package server

import (
	"fmt"
	"strconv"
	"strings"

	"multiai/catalog"
)

const (
	DefaultPort      = "3000"
	DefaultRateLimit = 10.0
)

// Config is the server configuration, read from the environment.
type Config struct {
	Port        string
	CatalogFile string
	Defaults    catalog.Defaults

	// RateLimit is the sustained requests per second allowed per client.
	// Zero disables limiting.
	RateLimit float64
	RateBurst int
}

// LoadConfig reads PORT, MULTIAI_CATALOG_FILE, MULTIAI_DEFAULT_MODEL and
// MULTIAI_RATE_LIMIT through getenv.
func LoadConfig(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:        DefaultPort,
		CatalogFile: strings.TrimSpace(getenv("MULTIAI_CATALOG_FILE")),
		Defaults:    catalog.DefaultDefaults(),
		RateLimit:   DefaultRateLimit,
	}

	if port := strings.TrimSpace(getenv("PORT")); port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		cfg.Port = port
	}

	if model := strings.TrimSpace(getenv("MULTIAI_DEFAULT_MODEL")); model != "" {
		cfg.Defaults.Model = model
	}

	if limit := strings.TrimSpace(getenv("MULTIAI_RATE_LIMIT")); limit != "" {
		v, err := strconv.ParseFloat(limit, 64)
		if err != nil || v < 0 {
			return Config{}, fmt.Errorf("invalid MULTIAI_RATE_LIMIT %q", limit)
		}
		cfg.RateLimit = v
	}
	cfg.RateBurst = burstFor(cfg.RateLimit)

	return cfg, nil
}

// burstFor allows short spikes of twice the sustained rate.
func burstFor(limit float64) int {
	burst := int(limit * 2)
	if burst < 1 {
		burst = 1
	}
	return burst
}

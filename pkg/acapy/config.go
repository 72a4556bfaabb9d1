package acapy

import (
	"fmt"
	"time"
)

// Config contains the settings for the admin API client.
type Config struct {
	// AdminURL is the base URL of the agent's admin API, e.g. http://localhost:8051.
	AdminURL string
	// APIKey, when set, is sent as the x-api-key header on every request.
	APIKey string
	// Timeout bounds each admin API call.
	Timeout time.Duration `default:"30s"`
}

func (c *Config) validate() error {
	if c.AdminURL == "" {
		return fmt.Errorf("admin url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

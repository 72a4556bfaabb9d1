package gateway

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Config contains the settings for the ledger-connector client.
type Config struct {
	// BaseURL is the root of the gateway, e.g. http://gateway.docker.internal:4000.
	BaseURL string
	// KeychainID is the fixed keychain holding the signing credentials the
	// gateway uses; the per-request keychain reference is the disclosed
	// pseudonym.
	KeychainID string
	// Timeout bounds each submission attempt.
	Timeout time.Duration `default:"30s"`
	// MaxRetries is the number of re-attempts after a failed submission.
	MaxRetries uint64 `default:"3"`
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base url is required")
	}
	if _, err := uuid.Parse(c.KeychainID); err != nil {
		return fmt.Errorf("keychain id must be a uuid: %w", err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

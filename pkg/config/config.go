package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the configuration for one party's controller process.
// The same shape is used by the bridge, centralbank and ministry binaries;
// gateway settings are only required by the bridge.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Agent      AgentConfig      `mapstructure:"agent"`
	Gateway    GatewayConfig    `mapstructure:"gateway"`
	Chain      ChainConfig      `mapstructure:"chain"`
	Issuer     IssuerConfig     `mapstructure:"issuer"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains webhook listener settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AgentConfig contains ACA-Py admin API client settings
type AgentConfig struct {
	AdminURL string        `mapstructure:"admin_url"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// GatewayConfig contains Cactus ledger-connector settings
type GatewayConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	KeychainID string        `mapstructure:"keychain_id"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries uint64        `mapstructure:"max_retries"`
}

// ChainConfig contains proof-chain settings
type ChainConfig struct {
	// AutoStart sends the Identity proof request as soon as the counterparty
	// connection completes. When false the chain waits for the
	// /actions/request-proofs trigger.
	AutoStart bool `mapstructure:"auto_start"`
	// MinimumAge is the age bound proved by the birthdate predicate.
	MinimumAge int `mapstructure:"minimum_age"`
}

// IssuerConfig contains the credential definitions an issuing party offers
// against. The definitions are registered out of band (agent bootstrap) and
// referenced here by id.
type IssuerConfig struct {
	IdentityCredDefID    string `mapstructure:"identity_cred_def_id"`
	TransactionCredDefID string `mapstructure:"transaction_cred_def_id"`
	BridgingCredDefID    string `mapstructure:"bridging_cred_def_id"`
	// HolderAge is the demo holder's age encoded into offered birthdates.
	HolderAge int `mapstructure:"holder_age"`
}

// MonitoringConfig contains metrics settings
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// Load loads an issuer-party configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// LoadBridge loads the bridge-party configuration, which additionally
// requires the ledger gateway settings.
func LoadBridge(configPath string) (*Config, error) {
	config, err := Load(configPath)
	if err != nil {
		return nil, err
	}
	if config.Gateway.BaseURL == "" {
		return nil, fmt.Errorf("config validation failed: gateway.base_url is required")
	}
	if config.Gateway.KeychainID == "" {
		return nil, fmt.Errorf("config validation failed: gateway.keychain_id is required")
	}
	return config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8052)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Agent defaults
	viper.SetDefault("agent.timeout", "30s")

	// Gateway defaults
	viper.SetDefault("gateway.timeout", "30s")
	viper.SetDefault("gateway.max_retries", 3)

	// Chain defaults
	viper.SetDefault("chain.auto_start", true)
	viper.SetDefault("chain.minimum_age", 18)

	// Issuer defaults
	viper.SetDefault("issuer.holder_age", 24)

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")
}

func validate(config *Config) error {
	if config.Agent.AdminURL == "" {
		return fmt.Errorf("agent.admin_url is required")
	}
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid port number")
	}
	if config.Chain.MinimumAge < 0 {
		return fmt.Errorf("chain.minimum_age must not be negative")
	}
	return nil
}

package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/swaplock-hq/swaplock/pkg/logger"
)

// Config holds the configuration for the swaplock daemon
type Config struct {
	Chains       map[int]ChainConfig
	MetricsPort  string
	PostgresDSN  string
	LoggerConfig LoggerConfig
}

// LoggerConfig holds the configuration for logging
type LoggerConfig struct {
	Level    logger.Level
	Coloring bool
}

// ChainConfig holds the configuration for one ledger
type ChainConfig struct {
	ChainID int
	// FactoryAddress is the factory's identity on the ledger; part of
	// deterministic escrow address derivation, fixed at deploy time.
	FactoryAddress string
	// AdapterAddress is the order adapter registered with the factory.
	AdapterAddress string
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	metricsPort, err := GetEnvMetricsPort()
	if err != nil {
		return nil, err
	}

	logLevel, err := GetEnvLogLevel()
	if err != nil {
		return nil, err
	}

	logColoring, err := GetEnvLogColoring()
	if err != nil {
		return nil, err
	}

	chainIDs, err := GetEnvChainIDs()
	if err != nil {
		return nil, err
	}

	chains := make(map[int]ChainConfig)
	for _, chainID := range chainIDs {
		chainConfig, err := GetEnvChainConfig(chainID)
		if err != nil {
			return nil, err
		}
		chains[chainID] = chainConfig
	}

	cfg := &Config{
		Chains:      chains,
		MetricsPort: metricsPort,
		PostgresDSN: GetEnvPostgresDSN(),
		LoggerConfig: LoggerConfig{
			Level:    logLevel,
			Coloring: logColoring,
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if len(cfg.Chains) == 0 {
		return fmt.Errorf("at least one chain configuration is required")
	}
	for chainID, chainConfig := range cfg.Chains {
		if chainConfig.FactoryAddress == "" {
			return fmt.Errorf("CHAIN_%d_FACTORY_ADDRESS is required", chainID)
		}
		if chainConfig.AdapterAddress == "" {
			return fmt.Errorf("CHAIN_%d_ADAPTER_ADDRESS is required", chainID)
		}
	}
	return nil
}

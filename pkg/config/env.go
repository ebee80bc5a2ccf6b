package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/swaplock-hq/swaplock/pkg/logger"
)

const (
	// DefaultMetricsPort defines the default port for the metrics server
	DefaultMetricsPort = "8080"

	// DefaultLogLevel defines the default logging level
	DefaultLogLevel = "info"

	// DefaultLogColoring defines whether colored chain prefixes are on
	DefaultLogColoring = true

	// DefaultChainIDs defines the ledgers brought up when none are configured.
	// Two local development chain IDs so the two-leg flow works out of the box.
	DefaultChainIDs = "31337,31338"

	// DefaultFactoryAddress is the development factory identity
	DefaultFactoryAddress = "0x00000000000000000000000000000000000Fac70"

	// DefaultAdapterAddress is the development order adapter identity
	DefaultAdapterAddress = "0x000000000000000000000000000000000000Ada0"
)

// GetEnvMetricsPort returns the metrics server port from environment variables
func GetEnvMetricsPort() (string, error) {
	metricsPort := os.Getenv("METRICS_PORT")
	if metricsPort == "" {
		return DefaultMetricsPort, nil
	}

	// Validate port format
	if _, err := strconv.Atoi(metricsPort); err != nil {
		return "", fmt.Errorf("invalid METRICS_PORT value: %s, must be a valid integer", metricsPort)
	}
	return metricsPort, nil
}

// GetEnvLogLevel returns the logging level from environment variables
func GetEnvLogLevel() (logger.Level, error) {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = DefaultLogLevel
	}

	switch level {
	case "debug":
		return logger.DebugLevel, nil
	case "info":
		return logger.InfoLevel, nil
	case "notice":
		return logger.NoticeLevel, nil
	case "error":
		return logger.ErrorLevel, nil
	}
	return 0, fmt.Errorf("invalid LOG_LEVEL value: %s, must be one of 'debug', 'info', 'notice', 'error'", level)
}

// GetEnvLogColoring returns whether log coloring is enabled from environment variables
func GetEnvLogColoring() (bool, error) {
	coloring := os.Getenv("LOG_COLORING")
	if coloring == "" {
		return DefaultLogColoring, nil
	}

	if coloring == "true" {
		return true, nil
	} else if coloring == "false" {
		return false, nil
	}

	return false, fmt.Errorf("invalid LOG_COLORING value: %s, must be 'true' or 'false'", coloring)
}

// GetEnvChainIDs returns the list of ledger chain IDs from environment variables
func GetEnvChainIDs() ([]int, error) {
	raw := os.Getenv("CHAIN_IDS")
	if raw == "" {
		raw = DefaultChainIDs
	}

	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	seen := make(map[int]bool)
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid CHAIN_IDS value: %s, must be a comma-separated list of integers", raw)
		}
		if id <= 0 {
			return nil, fmt.Errorf("chain ID must be greater than 0, got %d", id)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate chain ID %d in CHAIN_IDS", id)
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// GetEnvChainConfig returns the configuration for one chain from environment variables
func GetEnvChainConfig(chainID int) (ChainConfig, error) {
	factoryAddr := os.Getenv(fmt.Sprintf("CHAIN_%d_FACTORY_ADDRESS", chainID))
	if factoryAddr == "" {
		factoryAddr = DefaultFactoryAddress
	}
	if !common.IsHexAddress(factoryAddr) {
		return ChainConfig{}, fmt.Errorf("invalid CHAIN_%d_FACTORY_ADDRESS value: %s, must be a valid address", chainID, factoryAddr)
	}

	adapterAddr := os.Getenv(fmt.Sprintf("CHAIN_%d_ADAPTER_ADDRESS", chainID))
	if adapterAddr == "" {
		adapterAddr = DefaultAdapterAddress
	}
	if !common.IsHexAddress(adapterAddr) {
		return ChainConfig{}, fmt.Errorf("invalid CHAIN_%d_ADAPTER_ADDRESS value: %s, must be a valid address", chainID, adapterAddr)
	}

	return ChainConfig{
		ChainID:        chainID,
		FactoryAddress: factoryAddr,
		AdapterAddress: adapterAddr,
	}, nil
}

// GetEnvPostgresDSN returns the optional settlement record database DSN.
// Empty means records are kept in memory only.
func GetEnvPostgresDSN() string {
	return os.Getenv("POSTGRES_DSN")
}

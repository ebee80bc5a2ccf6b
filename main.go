package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"

	"github.com/swaplock-hq/swaplock/pkg/adapter"
	"github.com/swaplock-hq/swaplock/pkg/config"
	"github.com/swaplock-hq/swaplock/pkg/factory"
	"github.com/swaplock-hq/swaplock/pkg/health"
	"github.com/swaplock-hq/swaplock/pkg/ledger"
	"github.com/swaplock-hq/swaplock/pkg/logger"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg := logger.NewStdLogger(cfg.LoggerConfig.Coloring, cfg.LoggerConfig.Level)

	// Set up context with cancellation on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Settlement records live in Postgres when a DSN is configured,
	// otherwise in memory.
	var store adapter.RecordStore
	if cfg.PostgresDSN != "" {
		pgStore, err := adapter.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("Failed to connect settlement record store: %v", err)
		}
		defer pgStore.Close()
		store = pgStore
	} else {
		store = adapter.NewMemoryStore()
	}

	// Bring up one ledger, factory and order adapter per configured chain
	ledgers := make(map[int]*ledger.Ledger)
	factories := make(map[int]*factory.Factory)
	adapters := make(map[int]*adapter.Adapter)
	for chainID, chainCfg := range cfg.Chains {
		l := ledger.New(chainID, ledger.SystemClock{})
		f := factory.New(l, factory.Config{
			Address:         common.HexToAddress(chainCfg.FactoryAddress),
			AdapterAddress:  common.HexToAddress(chainCfg.AdapterAddress),
			CodeFingerprint: factory.EscrowCodeV1,
		})
		a := adapter.New(common.HexToAddress(chainCfg.AdapterAddress), f, l, store, lg)

		ledgers[chainID] = l
		factories[chainID] = f
		adapters[chainID] = a

		lg.InfoWithChain(chainID, "ledger up, factory %s, adapter %s",
			chainCfg.FactoryAddress, chainCfg.AdapterAddress)
	}

	// Start health monitoring server
	healthServer := health.NewServer(cfg.MetricsPort, ledgers, factories)
	go healthServer.Start()

	// Set up signal handling for graceful shutdown
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	lg.Info("swaplockd running with %d ledgers", len(ledgers))
	select {
	case <-signalCh:
		lg.Notice("Received termination signal, shutting down gracefully...")
		cancel()
	case <-ctx.Done():
	}
}

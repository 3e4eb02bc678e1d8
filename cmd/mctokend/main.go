package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"mctoken/config"
	"mctoken/core/state"
	"mctoken/native/bridge"
	"mctoken/native/redeem"
	"mctoken/native/token"
	"mctoken/observability"
	"mctoken/observability/logging"
	"mctoken/rpc"
	"mctoken/storage"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path to the daemon configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup("mctokend", cfg.Environment)

	db, err := openDatabase(cfg)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	manager := state.NewManager(db)
	tokenEngine := token.NewEngine(manager)
	bridgeEngine := bridge.NewEngine(manager, tokenEngine)
	registry := redeem.NewRegistry()
	redeemEngine := redeem.NewEngine(manager, tokenEngine, registry)

	genesis, err := config.LoadGenesis(cfg.GenesisFile)
	if err != nil {
		logger.Error("load genesis", "err", err)
		os.Exit(1)
	}
	initCfg, deployer, err := genesis.InitConfig()
	if err != nil {
		logger.Error("parse genesis", "err", err)
		os.Exit(1)
	}

	var initialized bool
	if err := manager.View(func(txn *state.Txn) error {
		var err error
		initialized, err = txn.Initialized()
		return err
	}); err != nil {
		logger.Error("read ledger state", "err", err)
		os.Exit(1)
	}
	if !initialized {
		ctx := token.NewCallContext(deployer, initCfg.LedgerAddress)
		if err := tokenEngine.Init(ctx, initCfg); err != nil {
			logger.Error("initialise ledger", "err", err)
			os.Exit(1)
		}
		logger.Info("ledger initialised",
			"name", initCfg.Name,
			"symbol", initCfg.Symbol,
			"deployer", deployer.String(),
		)
	}

	metrics := observability.NewMetrics(nil)
	server := rpc.NewServer(tokenEngine, bridgeEngine, redeemEngine, initCfg.LedgerAddress, metrics, logger)
	if err := server.Start(cfg.ListenAddress); err != nil {
		logger.Error("rpc server stopped", "err", err)
		os.Exit(1)
	}
}

func openDatabase(cfg *config.Config) (storage.Database, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return storage.NewMemDB(), nil
	case config.BackendBolt:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return storage.NewBoltDB(filepath.Join(cfg.DataDir, "ledger.db"))
	case config.BackendLevelDB:
		return storage.NewLevelDB(filepath.Join(cfg.DataDir, "ledger"))
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

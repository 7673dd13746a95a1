package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/yolodolo42/evmcli/internal/tracker"
)

// DefaultRPCURL is used when neither rpc_url nor network is set.
const DefaultRPCURL = "http://localhost:8545"

// DataDir is ~/.evmcli, or ./.evmcli when there is no home directory.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".evmcli"
	}
	return filepath.Join(home, ".evmcli")
}

// DefaultPath is the config file used when none is given.
func DefaultPath() string {
	return filepath.Join(DataDir(), "config.yaml")
}

// DefaultConfig returns a Config with the built-in defaults
func DefaultConfig() *Config {
	poll := tracker.DefaultConfig
	return &Config{
		KeystoreDir:    filepath.Join(DataDir(), "keystore"),
		RPCTimeout:     15 * time.Second,
		BalanceRefresh: 10 * time.Second,
		Poll: PollConfig{
			Interval:        poll.Interval,
			MaxNotFound:     poll.MaxNotFound,
			InitialBackoff:  poll.InitialBackoff,
			MaxBackoff:      poll.MaxBackoff,
			BackoffMultiple: poll.BackoffMultiple,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(DataDir(), "evmcli.log"),
		},
	}
}

// defaults lists every key with its default so that environment variables
// reach keys absent from the config file.
func defaults(cfg *Config) map[string]any {
	return map[string]any{
		"rpc_url":               cfg.RPCURL,
		"network":               cfg.Network,
		"chain_id":              cfg.ChainID,
		"account":               cfg.Account,
		"keystore_dir":          cfg.KeystoreDir,
		"private_key":           cfg.PrivateKey,
		"max_value":             cfg.MaxValue,
		"rpc_timeout":           cfg.RPCTimeout,
		"balance_refresh":       cfg.BalanceRefresh,
		"poll.interval":         cfg.Poll.Interval,
		"poll.max_not_found":    cfg.Poll.MaxNotFound,
		"poll.initial_backoff":  cfg.Poll.InitialBackoff,
		"poll.max_backoff":      cfg.Poll.MaxBackoff,
		"poll.backoff_multiple": cfg.Poll.BackoffMultiple,
		"viewer":                cfg.Viewer,
		"log.level":             cfg.Log.Level,
		"log.file":              cfg.Log.File,
		"metrics_addr":          cfg.MetricsAddr,
		"abi_paths":             cfg.ABIPaths,
	}
}

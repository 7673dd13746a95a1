package config

import (
	"time"

	"github.com/yolodolo42/evmcli/internal/tracker"
)

// Config is the complete evmcli configuration
type Config struct {
	RPCURL         string           `mapstructure:"rpc_url"`
	Network        string           `mapstructure:"network"`
	ChainID        int64            `mapstructure:"chain_id"`
	Account        string           `mapstructure:"account"`
	KeystoreDir    string           `mapstructure:"keystore_dir"`
	PrivateKey     string           `mapstructure:"private_key"`
	MaxValue       string           `mapstructure:"max_value"`
	RPCTimeout     time.Duration    `mapstructure:"rpc_timeout"`
	BalanceRefresh time.Duration    `mapstructure:"balance_refresh"`
	Poll           PollConfig       `mapstructure:"poll"`
	Viewer         string           `mapstructure:"viewer"`
	Log            LogConfig        `mapstructure:"log"`
	MetricsAddr    string           `mapstructure:"metrics_addr"`
	ABIPaths       []string         `mapstructure:"abi_paths"`
	Contracts      []ContractConfig `mapstructure:"contracts"`
}

// PollConfig controls receipt polling
type PollConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	MaxNotFound     int           `mapstructure:"max_not_found"`
	InitialBackoff  time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff      time.Duration `mapstructure:"max_backoff"`
	BackoffMultiple float64       `mapstructure:"backoff_multiple"`
}

// Tracker converts the poll settings for the receipt tracker.
func (p PollConfig) Tracker() tracker.Config {
	return tracker.Config{
		Interval:        p.Interval,
		MaxNotFound:     p.MaxNotFound,
		InitialBackoff:  p.InitialBackoff,
		MaxBackoff:      p.MaxBackoff,
		BackoffMultiple: p.BackoffMultiple,
	}
}

// LogConfig controls the session log file
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// ContractConfig binds an ABI file to a deployed address.
type ContractConfig struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
	ABI     string `mapstructure:"abi"`
}

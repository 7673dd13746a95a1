package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/yolodolo42/evmcli/internal/chain"
)

// validate validates the configuration
func validate(cfg *Config) error {
	if err := validateRPCURL(cfg.RPCURL); err != nil {
		return err
	}
	if cfg.ChainID < 0 {
		return fmt.Errorf("chain_id must not be negative")
	}
	if cfg.Account != "" && !common.IsHexAddress(cfg.Account) {
		return fmt.Errorf("account %q is not an address", cfg.Account)
	}
	if cfg.MaxValue != "" {
		if _, err := chain.ParseEther(cfg.MaxValue); err != nil {
			return fmt.Errorf("max_value: %w", err)
		}
	}
	if err := validatePoll(cfg.Poll); err != nil {
		return err
	}
	if cfg.RPCTimeout <= 0 {
		return fmt.Errorf("rpc_timeout must be positive")
	}
	if cfg.BalanceRefresh <= 0 {
		return fmt.Errorf("balance_refresh must be positive")
	}
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log level '%s': %w", cfg.Log.Level, err)
	}
	for i, c := range cfg.Contracts {
		if c.ABI == "" {
			return fmt.Errorf("contracts[%d]: abi is required", i)
		}
		if !common.IsHexAddress(c.Address) {
			return fmt.Errorf("contracts[%d]: address %q is not an address", i, c.Address)
		}
	}
	return nil
}

func validateRPCURL(raw string) error {
	if strings.HasSuffix(raw, ".ipc") {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid rpc_url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("invalid rpc_url %q: scheme must be one of: http, https, ws, wss", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid rpc_url %q: missing host", raw)
	}
	return nil
}

func validatePoll(p PollConfig) error {
	if p.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive")
	}
	if p.MaxNotFound < 0 {
		return fmt.Errorf("poll.max_not_found must not be negative")
	}
	if p.InitialBackoff <= 0 || p.MaxBackoff < p.InitialBackoff {
		return fmt.Errorf("poll backoff must satisfy 0 < initial_backoff <= max_backoff")
	}
	if p.BackoffMultiple < 1 {
		return fmt.Errorf("poll.backoff_multiple must be at least 1")
	}
	return nil
}

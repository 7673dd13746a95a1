package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yolodolo42/evmcli/internal/testutil"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ETH_RPC_URL", "PRIVATE_KEY", "EVMCLI_RPC_URL", "EVMCLI_PRIVATE_KEY",
		"EVMCLI_NETWORK", "EVMCLI_POLL_INTERVAL", "EVMCLI_ACCOUNT", "EVMCLI_LOG_LEVEL",
	} {
		testutil.UnsetEnv(t, k)
	}
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0600))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 2*time.Second, cfg.Poll.Interval)
	assert.Equal(t, 900, cfg.Poll.MaxNotFound)
	assert.Equal(t, time.Second, cfg.Poll.InitialBackoff)
	assert.Equal(t, 30*time.Second, cfg.Poll.MaxBackoff)
	assert.Equal(t, 15*time.Second, cfg.RPCTimeout)
	assert.Equal(t, 10*time.Second, cfg.BalanceRefresh)
	assert.Equal(t, "info", cfg.Log.Level)

	tc := cfg.Poll.Tracker()
	assert.Equal(t, cfg.Poll.Interval, tc.Interval)
	assert.Equal(t, 2.0, tc.BackoffMultiple)
}

func TestLoadWithoutConfigFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(afero.NewMemMapFs(), "", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, DefaultRPCURL, cfg.RPCURL)
	assert.Zero(t, cfg.ChainID)
}

func TestLoadWithConfigFile(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/cfg/evmcli.yaml", `
rpc_url: http://127.0.0.1:9545
chain_id: 31337
account: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
poll:
  interval: 500ms
  max_not_found: 10
contracts:
  - name: token
    address: "0x5FbDB2315678afecb367f032d93F642f64180aa3"
    abi: ./out/Token.json
`)

	cfg, err := Load(fs, "/cfg/evmcli.yaml", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9545", cfg.RPCURL)
	assert.Equal(t, int64(31337), cfg.ChainID)
	assert.Equal(t, 500*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, 10, cfg.Poll.MaxNotFound)
	assert.Equal(t, 30*time.Second, cfg.Poll.MaxBackoff, "unset keys keep defaults")
	require.Len(t, cfg.Contracts, 1)
	assert.Equal(t, "token", cfg.Contracts[0].Name)
	assert.Equal(t, "./out/Token.json", cfg.Contracts[0].ABI)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(afero.NewMemMapFs(), "/nope.yaml", zerolog.Nop())
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/c.yaml", "rpc_url: http://file:8545\n")

	t.Run("prefixed", func(t *testing.T) {
		testutil.SetEnv(t, "EVMCLI_RPC_URL", "http://env:8545")
		testutil.SetEnv(t, "EVMCLI_POLL_INTERVAL", "3s")
		cfg, err := Load(fs, "/c.yaml", zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, "http://env:8545", cfg.RPCURL)
		assert.Equal(t, 3*time.Second, cfg.Poll.Interval)
	})

	t.Run("unprefixed", func(t *testing.T) {
		testutil.SetEnv(t, "ETH_RPC_URL", "http://eth:8545")
		testutil.SetEnv(t, "PRIVATE_KEY", "0xabc")
		cfg, err := Load(fs, "/c.yaml", zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, "http://eth:8545", cfg.RPCURL)
		assert.Equal(t, "0xabc", cfg.PrivateKey)
	})
}

func TestNetworkPreset(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()

	t.Run("fills url and chain id", func(t *testing.T) {
		writeFile(t, fs, "/n.yaml", "network: sepolia\n")
		cfg, err := Load(fs, "/n.yaml", zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, "https://rpc.sepolia.org", cfg.RPCURL)
		assert.Equal(t, int64(11155111), cfg.ChainID)
	})

	t.Run("explicit url wins", func(t *testing.T) {
		writeFile(t, fs, "/n2.yaml", "network: anvil\nrpc_url: http://other:8545\n")
		cfg, err := Load(fs, "/n2.yaml", zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, "http://other:8545", cfg.RPCURL)
		assert.Equal(t, int64(31337), cfg.ChainID)
	})

	t.Run("unknown network", func(t *testing.T) {
		writeFile(t, fs, "/n3.yaml", "network: atlantis\n")
		_, err := Load(fs, "/n3.yaml", zerolog.Nop())
		assert.Error(t, err)
	})
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad scheme", func(c *Config) { c.RPCURL = "ftp://node" }},
		{"missing host", func(c *Config) { c.RPCURL = "http://" }},
		{"bad account", func(c *Config) { c.Account = "alice" }},
		{"bad max value", func(c *Config) { c.MaxValue = "lots" }},
		{"zero interval", func(c *Config) { c.Poll.Interval = 0 }},
		{"negative cap", func(c *Config) { c.Poll.MaxNotFound = -1 }},
		{"backoff order", func(c *Config) { c.Poll.MaxBackoff = time.Millisecond }},
		{"shrinking backoff", func(c *Config) { c.Poll.BackoffMultiple = 0.5 }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"contract without abi", func(c *Config) {
			c.Contracts = []ContractConfig{{Address: "0x5FbDB2315678afecb367f032d93F642f64180aa3"}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.RPCURL = DefaultRPCURL
			require.NoError(t, validate(cfg))
			tt.mutate(cfg)
			assert.Error(t, validate(cfg))
		})
	}

	t.Run("ipc path", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.RPCURL = "/tmp/geth.ipc"
		assert.NoError(t, validate(cfg))
	})
}

func TestWriteDefault(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, WriteDefault(fs, "/home/u/.evmcli/config.yaml"))

	data, err := afero.ReadFile(fs, "/home/u/.evmcli/config.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "rpc_url: http://localhost:8545")
	assert.Contains(t, string(data), "interval: 2s")

	cfg, err := Load(fs, "/home/u/.evmcli/config.yaml", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Poll, cfg.Poll)
}

func TestLoadWithFlags(t *testing.T) {
	clearEnv(t)
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/f.yaml", "rpc_url: http://file:8545\nmetrics_addr: 127.0.0.1:9100\n")
	testutil.SetEnv(t, "EVMCLI_RPC_URL", "http://env:8545")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("rpc-url", "", "")
	flags.String("network", "", "")
	flags.String("metrics-addr", "", "")

	t.Run("unset flags do not override", func(t *testing.T) {
		cfg, err := LoadWithFlags(fs, "/f.yaml", flags, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, "http://env:8545", cfg.RPCURL)
		assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)
	})

	t.Run("set flags win", func(t *testing.T) {
		require.NoError(t, flags.Set("rpc-url", "http://flag:8545"))
		require.NoError(t, flags.Set("network", "anvil"))
		cfg, err := LoadWithFlags(fs, "/f.yaml", flags, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, "http://flag:8545", cfg.RPCURL)
		assert.Equal(t, int64(31337), cfg.ChainID)
	})
}

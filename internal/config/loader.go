package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/yolodolo42/evmcli/internal/chain"
)

// LoadDotEnv loads ./.env into the environment. A missing file is not an
// error; variables already set win.
func LoadDotEnv(logger zerolog.Logger) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn().Err(err).Msg("could not read .env")
		}
		return
	}
	logger.Debug().Msg("loaded .env")
}

func newViper(fs afero.Fs) *viper.Viper {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigType("yaml")
	for k, val := range defaults(DefaultConfig()) {
		v.SetDefault(k, val)
	}
	return v
}

// Load reads configuration with the following priority:
// 1. environment (EVMCLI_*, plus ETH_RPC_URL and PRIVATE_KEY)
// 2. the explicit configPath, or ./config.yaml, or ~/.evmcli/config.yaml
// 3. defaults
func Load(fs afero.Fs, configPath string, logger zerolog.Logger) (*Config, error) {
	return LoadWithFlags(fs, configPath, nil, logger)
}

// flagKeys maps command line flags to the config keys they override.
var flagKeys = map[string]string{
	"rpc-url":      "rpc_url",
	"network":      "network",
	"account":      "account",
	"metrics-addr": "metrics_addr",
	"log-level":    "log.level",
}

// LoadWithFlags is Load with command line flags taking priority over the
// environment. Only flags the user actually set override anything.
func LoadWithFlags(fs afero.Fs, configPath string, flags *pflag.FlagSet, logger zerolog.Logger) (*Config, error) {
	v := newViper(fs)
	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "bind flag %s", name)
				}
			}
		}
	}

	if configPath != "" {
		ok, err := afero.Exists(fs, configPath)
		if err != nil {
			return nil, errors.Wrap(err, "check config file")
		}
		if !ok {
			return nil, errors.Newf("config file %s does not exist", configPath)
		}
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath(DataDir())
	}

	v.SetEnvPrefix("EVMCLI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("rpc_url", "EVMCLI_RPC_URL", "ETH_RPC_URL")
	_ = v.BindEnv("private_key", "EVMCLI_PRIVATE_KEY", "PRIVATE_KEY")

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "error reading config file")
		}
		logger.Debug().Msg("no config file found, using defaults")
	} else {
		configFileUsed = v.ConfigFileUsed()
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling config")
	}
	if err := applyNetwork(cfg); err != nil {
		return nil, err
	}

	logger.Info().
		Str("configFile", configFileUsed).
		Str("rpcURL", cfg.RPCURL).
		Int64("chainID", cfg.ChainID).
		Str("account", cfg.Account).
		Bool("privateKey", cfg.PrivateKey != "").
		Interface("poll", cfg.Poll).
		Int("contracts", len(cfg.Contracts)).
		Msg("effective configuration")

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// applyNetwork fills rpc_url and chain_id from the network preset when
// they are not set.
func applyNetwork(cfg *Config) error {
	if cfg.Network == "" {
		if cfg.RPCURL == "" {
			cfg.RPCURL = DefaultRPCURL
		}
		return nil
	}
	n, ok := chain.Networks()[cfg.Network]
	if !ok {
		return errors.Newf("unknown network %q", cfg.Network)
	}
	if cfg.RPCURL == "" {
		cfg.RPCURL = n.RPCURL
	}
	if cfg.ChainID == 0 {
		cfg.ChainID = n.ChainID.Int64()
	}
	return nil
}

// WriteDefault writes the default configuration to path, creating parent
// directories. Durations are written in their string form.
func WriteDefault(fs afero.Fs, path string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigType("yaml")
	for k, val := range defaults(DefaultConfig()) {
		if d, ok := val.(time.Duration); ok {
			val = d.String()
		}
		v.Set(k, val)
	}
	v.Set("rpc_url", DefaultRPCURL)
	if err := v.WriteConfigAs(path); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

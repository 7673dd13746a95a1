package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/enescakir/emoji"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/yolodolo42/evmcli/internal/config"
	"github.com/yolodolo42/evmcli/internal/logs"
	"github.com/yolodolo42/evmcli/internal/metrics"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "evmcli",
		Short: "Terminal UI for calling and tracing EVM contracts",
		Long: `evmcli is a terminal UI for EVM contracts.

Calls and transactions become cards. Pending transactions are tracked in
the background, and every card offers its own actions: copy, view the
receipt or logs, and replay through the node's debug tracers.`,
		SilenceUsage: true,
		RunE:         runInteractive,
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.evmcli/config.yaml)")
	rootCmd.PersistentFlags().String("rpc-url", "", "node RPC endpoint")
	rootCmd.PersistentFlags().String("network", "", "network preset (anvil, ethereum, sepolia, ...)")
	rootCmd.PersistentFlags().String("account", "", "sender address")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")
}

// session is everything a command needs after configuration is loaded.
type session struct {
	fs     afero.Fs
	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer
}

func (s *session) Close() {
	if s.closer != nil {
		_ = s.closer.Close()
	}
}

// loadSession reads .env and the config file, then opens the session log.
func loadSession(cmd *cobra.Command) (*session, error) {
	fs := afero.NewOsFs()
	bootstrap := logs.NewWithWriter(os.Stderr, zerolog.WarnLevel)

	config.LoadDotEnv(bootstrap)
	cfg, err := config.LoadWithFlags(fs, cfgFile, cmd.Flags(), bootstrap)
	if err != nil {
		return nil, err
	}

	logger, closer, err := logs.New(fs, cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return nil, errors.Wrap(err, "open session log")
	}
	logger.Info().
		Str("rpcURL", cfg.RPCURL).
		Str("network", cfg.Network).
		Msgf("%v Session started", emoji.Rocket)
	return &session{fs: fs, cfg: cfg, log: logger, closer: closer}, nil
}

// serveMetrics starts the metrics endpoint when an address is configured.
func serveMetrics(ctx context.Context, s *session) {
	addr := s.cfg.MetricsAddr
	if addr == "" {
		return
	}
	go func() {
		s.log.Info().Str("addr", addr).Msgf("%v Serving metrics", emoji.ChartIncreasing)
		if err := metrics.Serve(ctx, addr); err != nil {
			s.log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
}

func printErr(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

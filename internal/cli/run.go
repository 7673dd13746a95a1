package cli

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/enescakir/emoji"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/yolodolo42/evmcli/internal/chain"
	"github.com/yolodolo42/evmcli/internal/config"
	"github.com/yolodolo42/evmcli/internal/contract"
	"github.com/yolodolo42/evmcli/internal/tracker"
	"github.com/yolodolo42/evmcli/internal/tui"
	"github.com/yolodolo42/evmcli/internal/tx"
	"github.com/yolodolo42/evmcli/internal/viewer"
	"github.com/yolodolo42/evmcli/internal/wallet"
)

func runInteractive(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	serveMetrics(ctx, s)

	client := newClient(cfg, s)
	defer client.Close()

	registry, err := contract.LoadRegistry(s.fs, bindings(cfg.Contracts))
	if err != nil {
		return err
	}
	s.log.Info().Int("contracts", len(registry.Contracts())).Msgf("%v Loaded contracts", emoji.Scroll)

	signer, err := loadSigner(cfg, readPassword)
	if err != nil {
		return err
	}

	deps := tui.Deps{
		Backend:        client,
		Contracts:      registry,
		Viewer:         viewer.New(s.fs, cfg.Viewer),
		Logger:         s.log,
		Network:        network(cfg),
		BalanceRefresh: cfg.BalanceRefresh,
		RPCTimeout:     cfg.RPCTimeout,
	}
	if cfg.Account != "" {
		deps.Account = common.HexToAddress(cfg.Account)
	}
	if signer != nil {
		defer signer.Lock()
		deps.Account = signer.Address()
		policy := tx.Policy{}
		if cfg.MaxValue != "" {
			policy.MaxPerTxWei, _ = chain.ParseEther(cfg.MaxValue)
		}
		deps.Submitter = &tui.TxSubmitter{Backend: client, Signer: signer, Policy: policy, Logger: s.log}
		s.log.Info().Str("account", deps.Account.Hex()).Msgf("%v Signer ready", emoji.Key)
	}

	tr := tracker.New(ctx, client, cfg.Poll.Tracker(), s.log)
	defer tr.Close()
	deps.Tracker = tr

	model, err := tui.New(ctx, deps)
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func newClient(cfg *config.Config, s *session) *chain.Client {
	opts := chain.Options{Timeout: cfg.RPCTimeout, Logger: s.log}
	if cfg.ChainID != 0 {
		opts.ChainID = big.NewInt(cfg.ChainID)
	}
	return chain.NewClient(cfg.RPCURL, opts)
}

func network(cfg *config.Config) *chain.Network {
	if n, ok := chain.Networks()[cfg.Network]; ok {
		return n
	}
	if cfg.ChainID != 0 {
		return chain.NetworkByChainID(big.NewInt(cfg.ChainID))
	}
	return chain.NetworkByChainID(nil)
}

func bindings(contracts []config.ContractConfig) []contract.Binding {
	out := make([]contract.Binding, len(contracts))
	for i, c := range contracts {
		out[i] = contract.Binding{Name: c.Name, Address: c.Address, ABI: c.ABI}
	}
	return out
}

// loadSigner returns the configured signer, or nil when the session is
// read-only. A raw private key wins over the keystore, whose password is
// read with prompt.
func loadSigner(cfg *config.Config, prompt promptFunc) (*wallet.KeySigner, error) {
	if cfg.PrivateKey != "" {
		signer, err := wallet.NewKeySigner(cfg.PrivateKey)
		if err != nil {
			return nil, errors.Wrap(err, "private_key")
		}
		return signer, nil
	}
	if cfg.Account == "" {
		return nil, nil
	}

	km, err := wallet.NewKeystoreManager(cfg.KeystoreDir)
	if err != nil {
		return nil, err
	}
	address := common.HexToAddress(cfg.Account)
	found := false
	for _, acc := range km.ListAccounts() {
		if acc.Address == address {
			found = true
			break
		}
	}
	if !found {
		printErr("%v %s is not in %s, transactions are disabled", emoji.Warning, address.Hex(), km.Dir())
		return nil, nil
	}

	password, err := prompt(fmt.Sprintf("Password for %s: ", address.Hex()))
	if err != nil {
		return nil, errors.Wrap(err, "read password")
	}
	return km.Unlock(address, password)
}

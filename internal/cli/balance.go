package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/enescakir/emoji"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/yolodolo42/evmcli/internal/ui"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Show native and token balances",
	Long: `Display the native balance of an address on the configured node,
plus the balance of every --token given.

The address defaults to the configured account.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringSlice("token", nil, "ERC-20 token address to include (repeatable)")
}

func runBalance(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	target := s.cfg.Account
	if len(args) == 1 {
		target = args[0]
	}
	if target == "" {
		return fmt.Errorf("no address given and no account configured")
	}
	if !common.IsHexAddress(target) {
		return fmt.Errorf("invalid address: %s", target)
	}
	address := common.HexToAddress(target)

	tokens, _ := cmd.Flags().GetStringSlice("token")
	for _, t := range tokens {
		if !common.IsHexAddress(t) {
			return fmt.Errorf("invalid token address: %s", t)
		}
	}

	client := newClient(s.cfg, s)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("%v Balances for %s on %s\n", emoji.MoneyBag, address.Hex(), network(s.cfg).Name)
	fmt.Println("─────────────────────────────────────────────────────────")

	native, err := client.GetAccountBalance(ctx, address)
	if err != nil {
		return err
	}
	fmt.Printf("%s %-12s  %s\n", indicator(native.Balance.Sign() > 0), "native", native)

	for _, t := range tokens {
		token := common.HexToAddress(t)
		bal, err := client.GetTokenBalance(ctx, token, address)
		if err != nil {
			fmt.Printf("%-14s  %s Error: %v\n", t[:10]+"…", ui.SymbolWarn, err)
			continue
		}
		fmt.Printf("%s %-12s  %s\n", indicator(bal.Balance.Sign() > 0), bal.Symbol, bal)
	}

	fmt.Println("─────────────────────────────────────────────────────────")
	return nil
}

func indicator(nonZero bool) string {
	if nonZero {
		return "●"
	}
	return "○"
}

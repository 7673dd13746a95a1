package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/enescakir/emoji"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/yolodolo42/evmcli/internal/wallet"
	"golang.org/x/term"
)

const minPasswordLen = 8

// promptFunc prints prompt and reads one secret line.
type promptFunc func(prompt string) (string, error)

// walletSession is shared by the wallet subcommands: the loaded session,
// the keystore it points at, and the password prompt.
type walletSession struct {
	*session
	km     *wallet.KeystoreManager
	prompt promptFunc
}

// wallets is opened once per invocation by walletCmd's pre-run hook.
var wallets *walletSession

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage the keystore the session signs with",
	Long: `Create, import and list keystore accounts.

The keystore directory and the signing account come from the same
configuration the interactive session reads.`,
	PersistentPreRunE: openWallets,
	PersistentPostRun: func(*cobra.Command, []string) {
		if wallets != nil {
			wallets.Close()
			wallets = nil
		}
	},
}

var walletCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new keystore account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wallets.create(cmd.OutOrStdout())
	},
}

var walletImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Encrypt a private key into the keystore",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("key")
		return wallets.importKey(cmd.OutOrStdout(), cmd.InOrStdin(), key)
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List keystore accounts, marking the configured one",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wallets.list(cmd.OutOrStdout())
	},
}

var walletSignerCmd = &cobra.Command{
	Use:   "signer",
	Short: "Unlock the configured signer and show its address",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wallets.signer(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(walletCreateCmd, walletImportCmd, walletListCmd, walletSignerCmd)

	walletImportCmd.Flags().String("key", "", "private key to import (hex, with or without 0x prefix)")
}

func openWallets(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	km, err := wallet.NewKeystoreManager(s.cfg.KeystoreDir)
	if err != nil {
		s.Close()
		return errors.Wrap(err, "open keystore")
	}
	wallets = &walletSession{session: s, km: km, prompt: readPassword}
	return nil
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(password), nil
}

// newPassword asks for a password twice and enforces the minimum length.
func (ws *walletSession) newPassword() (string, error) {
	password, err := ws.prompt("New keystore password: ")
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}
	if len(password) < minPasswordLen {
		return "", errors.Newf("password must be at least %d characters", minPasswordLen)
	}
	confirm, err := ws.prompt("Confirm password: ")
	if err != nil {
		return "", errors.Wrap(err, "read password confirmation")
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

func (ws *walletSession) create(out io.Writer) error {
	password, err := ws.newPassword()
	if err != nil {
		return err
	}
	account, err := ws.km.CreateAccount(password)
	if err != nil {
		return errors.Wrap(err, "create account")
	}
	ws.log.Info().Str("address", account.Address.Hex()).Msg("keystore account created")

	fmt.Fprintf(out, "\n%v Account created: %s\n", emoji.Key, account.Address.Hex())
	fmt.Fprintf(out, "Keystore file: %s\n", account.URL.Path)
	fmt.Fprintln(out, "Back up the keystore file. The password cannot be recovered.")
	ws.hint(out, account.Address)
	return nil
}

func (ws *walletSession) importKey(out io.Writer, in io.Reader, key string) error {
	if key == "" {
		fmt.Fprint(out, "Private key (hex): ")
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return errors.Wrap(err, "read private key")
		}
		key = strings.TrimSpace(line)
	}
	if key == "" {
		return errors.New("private key is required")
	}

	password, err := ws.newPassword()
	if err != nil {
		return err
	}
	account, err := ws.km.ImportKey(key, password)
	if err != nil {
		return errors.Wrap(err, "import key")
	}
	ws.log.Info().Str("address", account.Address.Hex()).Msg("keystore account imported")

	fmt.Fprintf(out, "\n%v Account imported: %s\n", emoji.Key, account.Address.Hex())
	fmt.Fprintf(out, "Keystore file: %s\n", account.URL.Path)
	ws.hint(out, account.Address)
	return nil
}

// hint tells the user how to sign with address when no account is configured.
func (ws *walletSession) hint(out io.Writer, address common.Address) {
	if ws.cfg.Account == "" && ws.cfg.PrivateKey == "" {
		fmt.Fprintf(out, "Run with --account %s to sign with it.\n", address.Hex())
	}
}

func (ws *walletSession) list(out io.Writer) error {
	accounts := ws.km.ListAccounts()
	if len(accounts) == 0 {
		fmt.Fprintf(out, "No accounts in %s.\n", ws.km.Dir())
		fmt.Fprintln(out, "Use 'evmcli wallet create' or 'evmcli wallet import' to add one.")
		return nil
	}

	var configured common.Address
	if ws.cfg.Account != "" {
		configured = common.HexToAddress(ws.cfg.Account)
	}
	seen := false
	fmt.Fprintf(out, "%d account(s) in %s:\n\n", len(accounts), ws.km.Dir())
	for i, acc := range accounts {
		mark := " "
		if acc.Address == configured {
			mark = "*"
			seen = true
		}
		fmt.Fprintf(out, "%s %d. %s\n", mark, i+1, acc.Address.Hex())
	}
	if ws.cfg.Account != "" && !seen {
		fmt.Fprintf(out, "\n%v Configured account %s is not in this keystore.\n", emoji.Warning, configured.Hex())
	}
	return nil
}

// signer unlocks the signer the interactive session would use.
func (ws *walletSession) signer(out io.Writer) error {
	signer, err := loadSigner(ws.cfg, ws.prompt)
	if err != nil {
		return err
	}
	if signer == nil {
		fmt.Fprintln(out, "No signer configured, the session is read-only.")
		return nil
	}
	defer signer.Lock()

	source := "keystore " + ws.km.Dir()
	if ws.cfg.PrivateKey != "" {
		source = "private_key"
	}
	fmt.Fprintf(out, "%v Signing as %s (%s)\n", emoji.Key, signer.Address().Hex(), source)
	return nil
}

package cli

import (
	"fmt"

	"github.com/enescakir/emoji"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/yolodolo42/evmcli/internal/config"
	"github.com/yolodolo42/evmcli/internal/viewer"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or edit the configuration file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(configPath())
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the configuration file in $EDITOR, creating it if needed",
	RunE:  runConfigEdit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	fs := afero.NewOsFs()
	path := configPath()

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return err
	}
	if !exists {
		if err := config.WriteDefault(fs, path); err != nil {
			return err
		}
		fmt.Printf("%v Wrote default configuration to %s\n", emoji.Scroll, path)
	}

	return viewer.EditorCommand(path).Run()
}

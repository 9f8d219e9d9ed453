package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nodewee/ocr-hub/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `Manage settings stored in the configuration file.

Configuration is stored as YAML in your XDG config directory
(~/.config/ocr-hub/config.yaml on Linux). It is created with auto-detected
tool paths the first time it is needed. Environment variables (OCR_HUB_*,
TESSERACT_PATH, ...) and command line flags override it at run time.

Examples:
  ocr-hub config list                              # List all settings
  ocr-hub config get ocr_engine                    # Get the default OCR engine
  ocr-hub config set ocr_engine tesseract-cli      # Always use the tesseract command
  ocr-hub config set renderers pdftoppm,ghostscript  # Skip MuPDF`,
}

// listConfig prints every persisted setting
func listConfig(w io.Writer) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "📁 Config file: %s\n\n", config.GetConfigFilePath())

	keys := config.ListConfigKeys()
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		value, err := cfg.Get(key)
		if err != nil {
			return err
		}
		rows = append(rows, []string{key, displayValue(value)})
	}
	printTable(w, []string{"Key", "Value"}, rows)
	return nil
}

// getConfig prints one setting
func getConfig(w io.Writer, key string) error {
	value, err := config.GetConfigValue(key)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s = %s\n", key, value)
	return nil
}

// setConfig updates one setting and saves the file
func setConfig(w io.Writer, key, value string) error {
	if err := config.SetConfigValue(key, value); err != nil {
		return err
	}
	fmt.Fprintf(w, "✅ Successfully set %s = %s\n", key, value)
	return nil
}

// configListCmd represents the 'config list' command
var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listConfig(cmd.OutOrStdout())
	},
}

// configGetCmd represents the 'config get' command
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getConfig(cmd.OutOrStdout(), args[0])
	},
}

// configSetCmd represents the 'config set' command
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a specific setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setConfig(cmd.OutOrStdout(), args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

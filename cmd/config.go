package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdfbench/pdfbench/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tool path configuration",
	Long: `Manage tool path configuration settings.

Configuration is stored in a JSON file in your user configuration directory (~/.pdfbench/config.json).
You can list all persisted settings, get specific values, or set new values.

Available commands:
  list  - List all persisted settings
  get   - Get a specific setting
  set   - Set a specific setting

Examples:
  pdfbench config list                                    # List all settings
  pdfbench config get tesseract_path                      # Get Tesseract path
  pdfbench config set tesseract_path /usr/bin/tesseract   # Set Tesseract path
  pdfbench config set nougat_path /opt/nougat/bin/nougat  # Set Nougat path
  pdfbench config set grobid_url http://grobid:8070       # Set GROBID service URL`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "list":
			listConfig()
		case "get":
			if len(args) < 2 {
				fmt.Println("Error: 'get' command requires a key name")
				fmt.Println("Usage: pdfbench config get <key>")
				return
			}
			getConfig(args[1])
		case "set":
			if len(args) < 3 {
				fmt.Println("Error: 'set' command requires a key and value")
				fmt.Println("Usage: pdfbench config set <key> <value>")
				return
			}
			setConfig(args[1], args[2])
		default:
			fmt.Printf("Error: Unknown config command '%s'\n", args[0])
			fmt.Println("Available commands: list, get, set")
		}
	},
}

// listConfig lists all persisted configuration settings
func listConfig() {
	fmt.Println("🛠️  Tool Configuration")
	fmt.Println("======================")

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("❌ Error loading configuration: %v\n", err)
		return
	}

	configPath, _ := config.ConfigFilePath()
	fmt.Printf("📁 Config file: %s\n\n", configPath)

	fmt.Println("🛠️  Settings:")
	fmt.Printf("  %-16s = %s\n", "tesseract_path", getDisplayValue(cfg.TesseractPath))
	fmt.Printf("  %-16s = %s\n", "nougat_path", getDisplayValue(cfg.NougatPath))
	fmt.Printf("  %-16s = %s\n", "grobid_url", getDisplayValue(cfg.GrobidURL))

	fmt.Println("\n💡 Tip: Use 'pdfbench config get <key>' to get specific values")
	fmt.Println("💡 Tip: Use 'pdfbench config set <key> <value>' to change settings")
	fmt.Println("💡 Note: Other settings (DPI, tolerance, chunking) are runtime-only")
}

// getConfig gets a specific configuration value
func getConfig(key string) {
	value, err := config.GetConfigValue(key)
	if err != nil {
		fmt.Printf("❌ Error getting config value '%s': %v\n", key, err)
		return
	}

	fmt.Printf("📝 %s = %v\n", key, value)
}

// setConfig sets a specific configuration value
func setConfig(key, value string) {
	err := config.SetConfigValue(key, value)
	if err != nil {
		fmt.Printf("❌ Error setting config value '%s': %v\n", key, err)
		return
	}

	fmt.Printf("✅ Successfully set %s = %v\n", key, value)
	fmt.Printf("💡 Tip: Make sure the tool is installed and accessible at this path\n")
}

// getDisplayValue returns a display-friendly value for empty strings
func getDisplayValue(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

// configListCmd represents the 'config list' command
var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all persisted settings",
	Run: func(cmd *cobra.Command, args []string) {
		listConfig()
	},
}

// configGetCmd represents the 'config get' command
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific setting value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		getConfig(args[0])
	},
}

// configSetCmd represents the 'config set' command
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a specific setting value",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		setConfig(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

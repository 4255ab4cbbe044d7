package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdfbench/pdfbench/pkg/config"
	"github.com/pdfbench/pdfbench/pkg/core"
	"github.com/pdfbench/pdfbench/pkg/logger"
)

// backendsCmd lists registered extraction backends and their availability
var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List extraction backends and their availability",
	Long: `List all registered extraction backends and whether their external
dependencies are satisfied on this machine.

Availability checks:
  plaintext, layout - always available (pure Go)
  ocr               - tesseract executable on PATH or configured path
  markup            - nougat executable on PATH or configured path
  structure         - always listed; the service is only contacted at run time`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfigWithEnvOverrides()
		log := logger.NewLogger(cfg.LogLevel, cfg.EnableVerbose)
		registry := core.NewDefaultRegistry(cfg, log)

		fmt.Println("🔌 Extraction Backends")
		fmt.Println("======================")
		for _, id := range registry.IDs() {
			backend := registry.Lookup(id)
			status := "✅ available"
			if !backend.Available() {
				status = "❌ unavailable"
			}
			fmt.Printf("  %-10s %s\n", id, status)
		}
	},
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}

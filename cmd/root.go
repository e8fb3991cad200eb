package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sitefinder/internal/config"
)

var cfg *config.Config

var (
	flagName        string
	flagAddress     string
	flagDescription string
	flagFormat      string
)

var rootCmd = &cobra.Command{
	Use:   "sitefinder",
	Short: "Find a company's official website",
	Long: "Queries web-search providers in order, fetches the candidate pages, and ranks them with a " +
		"language-model relevance scorer until one candidate is confident enough.",
	Example: `  sitefinder --name "Acme Corp" --address "東京都千代田区丸の内1-2-3"`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFind(cmd, cfg)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flagName, "name", "", "company name (required)")
	f.StringVar(&flagAddress, "address", "", "company address")
	f.StringVar(&flagDescription, "description", "", "short description of the company")
	f.StringVar(&flagFormat, "format", formatJSON, "output format: json or yaml")
	_ = rootCmd.MarkFlagRequired("name")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

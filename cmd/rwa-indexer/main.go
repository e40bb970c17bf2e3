package main

import (
	"fmt"
	"os"

	"github.com/goran-ethernal/RWAIndexor/internal/config"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	pkgconfig "github.com/goran-ethernal/RWAIndexor/pkg/config"
	"github.com/spf13/cobra"
)

const (
	version = "1.0.0"
	banner  = `
╔═══════════════════════════════════════════╗
║           RWA Indexer v%s              ║
║   Concordium RWA contract event indexer   ║
╚═══════════════════════════════════════════╝
`
)

var (
	configPath string
	envFile    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rwa-indexer",
	Short: "RWA Indexer - Concordium RWA contract event indexer",
	Long: `RWA Indexer follows finalized Concordium blocks, decodes the events of the
RWA tokenization contracts it is configured for and keeps a relational
projection of their state.`,
	Version:      version,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start indexing finalized blocks",
	RunE:  runIndexer,
}

var processorsCmd = &cobra.Command{
	Use:   "processors",
	Short: "List processor types and the configured processors",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listProcessors(cmd.OutOrStdout())
	},
}

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Print the last processed block",
	RunE:  printCheckpoint,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := config.Schema()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(schema))
		return err
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath, envFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d processor(s), %s store\n",
			configPath, len(cfg.Processors), cfg.DB.Driver)
		return err
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rwa-indexer %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with environment overrides")

	configCmd.AddCommand(schemaCmd, validateCmd)
	rootCmd.AddCommand(runCmd, processorsCmd, checkpointCmd, configCmd, versionCmd)
}

// componentLogger avoids handing a typed nil to the logger when logging is not configured.
func componentLogger(cfg *pkgconfig.Config, component string) *logger.Logger {
	if cfg.Logging == nil {
		return logger.NewComponentLoggerFromConfig(component, nil)
	}
	return logger.NewComponentLoggerFromConfig(component, cfg.Logging)
}

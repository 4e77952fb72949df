// Command shadowtree drives the shadow filesystem tree from the command
// line. Every subcommand builds the tree for the base directory, performs a
// single operation, and prints the outcome; there is no interactive loop.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"shadowtree/internal/config"
	"shadowtree/internal/logging"
	"shadowtree/internal/tree"
)

var (
	logger = logging.GetLogger().WithPrefix("cli")

	flagBase     string
	flagConfig   string
	flagLogLevel string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "shadowtree",
	Short: "Inspect and mutate a directory through its shadow tree",
	Long: `shadowtree mirrors a directory subtree in memory and keeps the mirror
consistent with the real filesystem across create, delete, rename, and
import operations. Nodes are addressed by path relative to the base
directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagBase != "" {
			cfg.BasePath = flagBase
		}
		if flagLogLevel != "" {
			cfg.LogLevel = flagLogLevel
		}
		logging.SetLevel(cfg.LogLevel)
		return nil
	},
}

// newManager constructs the manager for the configured base directory and
// builds the tree.
func newManager() (*tree.Manager, error) {
	m, err := tree.New(cfg.BasePath)
	if err != nil {
		return nil, err
	}
	m.SetMaxDepth(cfg.MaxDepth)
	if _, err := m.Build(); err != nil {
		return nil, err
	}
	return m, nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&flagBase, "base", "b", "", "base directory to shadow (default: current directory)")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: error, warn, info, debug")

	rootCmd.AddCommand(
		treeCmd(),
		searchCmd(),
		mkdirCmd(),
		touchCmd(),
		rmCmd(),
		mvCmd(),
		importCmd(),
		previewCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

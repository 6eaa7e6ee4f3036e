package cli

import (
	"fmt"
	"os"

	"github.com/LeJamon/goTernaryMerkle/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configFile string
	debug      bool

	// Set by the root command before any subcommand runs
	cfg    *config.Config
	logger = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tmtree",
	Short: "tmtree - ternary Merkle tree tool",
	Long: `tmtree builds ternary Merkle trees over sequences of data blocks, writes
them as snapshots, and produces and checks membership proofs against them.
Leaves are grouped three at a time; short leaf layers are padded with empty
blocks.`,
	Version:           "0.1.0-dev",
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path (default: ./"+config.DefaultConfigPath+" when present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// initConfig loads the configuration and builds the logger.
func initConfig(cmd *cobra.Command, args []string) error {
	var err error
	if configFile != "" {
		cfg, err = config.LoadConfig(configFile)
	} else {
		cfg, err = config.LoadDefaultConfig()
	}
	if err != nil {
		return err
	}

	if debug {
		cfg.Log.Level = "debug"
	}
	logger, err = cfg.Log.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Debug("configuration loaded",
		zap.String("file", cfg.GetConfigPath()),
		zap.String("hash_algorithm", cfg.Tree.HashAlgorithm),
		zap.String("snapshot_format", cfg.Snapshot.Format),
		zap.String("compression", cfg.Snapshot.Compression))
	return nil
}

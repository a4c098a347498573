// Package cli implements the ffsync command-line interface
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/wuhui20091515/FreeFileSync/pkg/logger"
)

var (
	cfgFile     string
	verboseMode bool
	version     string
	buildDate   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ffsync",
	Short: "ffsync - Compare and synchronize folders",
	Long: `ffsync compares two folder hierarchies, decides for every file, folder,
and symbolic link whether it should be copied, deleted, or flagged as a
conflict, and applies the result. Supports two-way synchronization against a
persisted last-sync state, mirror and update policies, rename detection,
and include/exclude filtering. Folders may live on the local disk or on
Google Drive ("gdrive:" paths).`,
	Version: version,
}

// Execute adds all child commands to the root command and runs it
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, bd string) {
	version = v
	buildDate = bd
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildDate)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ffsync/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "verbose output")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(configCmd)
}

// initConfig reads the config file and environment variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".ffsync"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}
	viper.SetEnvPrefix("FFSYNC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verboseMode {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	logCfg := logger.DefaultConfig()
	if verboseMode {
		logCfg.Level = "debug"
		logCfg.Development = true
	}
	if err := logger.Initialize(logCfg); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logging:", err)
	}
	logger.Get().Debug("Configuration loaded", zap.String("config", viper.ConfigFileUsed()))
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/wflint-dev/wflint/internal/config"
	"github.com/wflint-dev/wflint/internal/observability"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "wflint",
	Short: "wflint analyzes workflow and transaction code for determinism and injection defects.",
	Long: `wflint statically analyzes JavaScript and TypeScript sources. Functions
decorated @Workflow are checked for non-deterministic operations, functions
decorated @Transaction for global mutation, and every raw database query
call site is checked for SQL built from non-literal input.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(); err != nil {
			return err
		}

		var cfg config.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "wflint"})
			return fmt.Errorf("failed to unmarshal config: %w", err)
		}

		observability.InitializeLogger(cfg.Logger)
		observability.GetLogger().Debug("starting wflint", zap.String("version", Version))
		return nil
	},
}

// Execute runs the root command under the given signal-aware context and
// maps failures to exit codes. Analysis findings exit 2 so scripts can
// tell them apart from operational errors.
func Execute(ctx context.Context) {
	defer observability.Sync()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errFindingsReported) {
			os.Exit(2)
		}
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("command failed", zap.Error(err))
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./wflint.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// initializeConfig reads in config file and ENV variables if set.
func initializeConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			viper.AddConfigPath(home + "/.config/wflint")
		}
		viper.SetConfigName("wflint")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("WFLINT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

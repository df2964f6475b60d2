// File: cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/enricoisidori/threadscape/internal/config"
	"github.com/enricoisidori/threadscape/internal/observability"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:          "threadscape",
	Short:        "Threadscape computes process metrics over design-work graphs.",
	Long:         "Threadscape ingests documented design-process graphs and computes the structural, temporal and cross-category metric battery used to compare processes across projects.",
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The version command must work without any configuration present.
		if cmd.Name() == "version" {
			return nil
		}

		if err := initializeConfig(); err != nil {
			return fmt.Errorf("failed to initialize configuration: %w", err)
		}
		if err := bindCommandFlags(cmd); err != nil {
			return fmt.Errorf("failed to bind command flags: %w", err)
		}
		if err := config.Load(viper.GetViper()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		cfg := config.Get()
		observability.InitializeLogger(cfg.Logger)
		observability.GetLogger().Debug("Starting threadscape",
			zap.String("version", Version),
			zap.String("corpus", cfg.Input.Dir),
		)
		return nil
	},
}

// Execute runs the root command under the context passed from main.go so
// signals cancel in-flight batches gracefully.
func Execute(ctx context.Context) error {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if ctx.Err() == nil {
			if logger := observability.GetLogger(); logger != nil {
				logger.Error("Command execution failed", zap.Error(err))
			} else {
				fmt.Fprintln(os.Stderr, "Error:", err)
			}
		}
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// bindCommandFlags binds the invoked command's corpus and output flags onto
// their config keys. Binding here, against the command actually running,
// keeps sibling commands that declare the same flag names from shadowing
// each other.
func bindCommandFlags(cmd *cobra.Command) error {
	bindings := map[string]string{
		"input":     "input.dir",
		"recursive": "input.recursive",
		"ignore":    "input.ignore",
		"out":       "output.dir",
	}
	for flagName, key := range bindings {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return err
		}
	}
	return nil
}

// initializeConfig reads in the config file and ENV variables if set.
func initializeConfig() error {
	v := viper.GetViper()

	// Set default values so the app can run with a minimal config.
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("THREADSCAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The archive connection string is the one setting almost always passed
	// through the environment rather than the file.
	_ = v.BindEnv("postgres.url", "THREADSCAPE_POSTGRES_URL")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and environment carry the
		// run. Anything else (unreadable, malformed) must surface.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

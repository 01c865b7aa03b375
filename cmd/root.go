// File: cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/framesmith/internal/config"
	"github.com/xkilldash9x/framesmith/internal/observability"
	"github.com/xkilldash9x/framesmith/internal/service"
)

type contextKey string

const configKey contextKey = "config"

// newFactory builds the component factory used by generate. Tests replace it.
var newFactory = service.NewComponentFactory

// NewRootCommand creates a fresh command tree. Each tree owns its own viper
// instance, so flags from one invocation never leak into the next.
func NewRootCommand() *cobra.Command {
	return newRootCmd()
}

// Execute runs the root command with a signal-aware context.
func Execute(ctx context.Context) error {
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger := observability.GetLogger()
		if errors.Is(err, context.Canceled) {
			logger.Warn("Command aborted.")
		} else {
			logger.Error("Command execution failed", zap.Error(err))
		}
		return err
	}
	return nil
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "framesmith",
		Short:         "Framesmith turns design frames into component code.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.SetDefaults(v)

			if err := initializeConfig(v, cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "framesmith"})
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger())
			observability.GetLogger().Debug("Starting framesmith", zap.String("version", Version))

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, configKey, cfg))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./framesmith.yaml, then ~/.framesmith/config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// initializeConfig reads the config file, if any, and wires the environment.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".framesmith"))
		}
		v.SetConfigName("framesmith")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// getConfigFromContext returns the configuration stored by the root command.
func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("configuration not found in command context")
	}
	return cfg, nil
}

// writeFile creates parent directories as needed.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/arturoeanton/controle-estoque/pkg/config"
)

const envFileFlag = "env-file"

// withEnvFile adds the --env-file flag to a command's flag map.
func withEnvFile(flags map[string]cobraflags.Flag) map[string]cobraflags.Flag {
	flags[envFileFlag] = &cobraflags.StringFlag{
		Name:  envFileFlag,
		Value: ".env",
		Usage: "Dotenv file loaded before reading the configuration",
	}
	return flags
}

func main() {
	root := &cobra.Command{
		Use:           "estoque",
		Short:         "Controle de Estoque server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newPromoteCommand())

	if err := root.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the dotenv file, if any, then the configuration, and
// installs the configured logger as the default.
func loadConfig(flags map[string]cobraflags.Flag) (*config.Config, error) {
	envFile := flags[envFileFlag].GetString()
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(cfg.Logger())
	return cfg, nil
}

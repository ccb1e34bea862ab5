// Command ideaboard runs the idea board API and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/ideaboard/internal/config"
)

var (
	configPath string
	envName    string
)

var rootCmd = &cobra.Command{
	Use:   "ideaboard",
	Short: "Idea board with semantic duplicate detection",
	Long: `ideaboard stores ideas and threaded comments in Valkey and suggests
similar existing ideas while a new one is being typed.

Configuration is read from config/<env>.yaml (ENV, default "local") or --config.
A .env file in the working directory is loaded first if present.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "environment name (overrides ENV)")
}

func main() {
	// .env is optional (API keys in local dev)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the environment and reads its config.
func loadConfig() (config.Config, string, error) {
	env := envName
	if env == "" {
		env = config.GetEnv()
	}

	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return config.Config{}, "", fmt.Errorf("load config: %w", err)
	}
	return cfg, env, nil
}

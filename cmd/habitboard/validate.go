package main

import (
	"fmt"

	"github.com/jpalmerr/habitboard/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a habitboard configuration file without starting the server.

This command parses the YAML, expands environment variables, and validates
all fields. It does not connect to the storage backend.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  habitboard validate -c config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	timezone := cfg.Timezone
	if timezone == "" {
		timezone = "local"
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Port:              %d\n", cfg.Port)
	fmt.Printf("  Timezone:          %s\n", timezone)
	fmt.Printf("  Rollover interval: %s\n", cfg.RolloverInterval.Duration())
	fmt.Printf("  Storage:           %s\n", describeStorage(cfg.Storage))

	return nil
}

// describeStorage summarizes the storage section without printing secrets.
func describeStorage(s config.StorageConfig) string {
	switch s.Driver {
	case "file", "sqlite":
		return fmt.Sprintf("%s (%s)", s.Driver, s.Path)
	case "redis":
		return fmt.Sprintf("%s (namespace %s)", s.Driver, s.Namespace)
	default:
		return s.Driver
	}
}

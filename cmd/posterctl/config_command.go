package main

import (
	"fmt"

	"github.com/Conceptual-Machines/poster-api/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const redacted = "[REDACTED]"

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(redactSecrets(*cfg))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and report whether an API key is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Configuration valid")
			if cfg.ActiveAPIKey() == "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Warning: no API key for provider %s\n", cfg.Upstream.Provider)
			}
			return nil
		},
	})

	return cmd
}

// redactSecrets works on a copy so the loaded config keeps its keys
func redactSecrets(cfg config.Config) config.Config {
	mask := func(s *string) {
		if *s != "" {
			*s = redacted
		}
	}
	mask(&cfg.Upstream.APIKey)
	mask(&cfg.Upstream.GeminiAPIKey)
	mask(&cfg.Observability.SentryDSN)
	mask(&cfg.Observability.LangfuseSecretKey)
	return cfg
}

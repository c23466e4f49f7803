package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"favsort/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}

			if err := config.WriteSample(target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set llm.api_key (or export FAVSORT_LLM_API_KEY), then run 'favsort login'.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Print the resolved configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configFlag, _ := cmd.Flags().GetString("config")
			cfg, path, exists, err := config.Load(configFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file does not exist; showing defaults")
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Setting", "Value"},
				[][]string{
					{"bilibili.api_base_url", cfg.Bilibili.APIBaseURL},
					{"bilibili.passport_base_url", cfg.Bilibili.PassportBaseURL},
					{"bilibili.page_size", fmt.Sprintf("%d", cfg.Bilibili.PageSize)},
					{"bilibili.request_delay_ms", fmt.Sprintf("%d", cfg.Bilibili.RequestDelayMS)},
					{"bilibili.cookie", maskSecret(cfg.Bilibili.Cookie)},
					{"llm.base_url", cfg.LLM.BaseURL},
					{"llm.model", cfg.LLM.Model},
					{"llm.api_key", maskSecret(cfg.LLM.APIKey)},
					{"llm.timeout_seconds", fmt.Sprintf("%d", cfg.LLM.TimeoutSeconds)},
					{"llm.batch_size", fmt.Sprintf("%d", cfg.LLM.BatchSize)},
					{"logging.level", cfg.Logging.Level},
					{"logging.format", cfg.Logging.Format},
					{"paths.state_dir", cfg.Paths.StateDir},
				},
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

// maskSecret keeps enough of a secret to recognize it without exposing it.
func maskSecret(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "(unset)"
	}
	if len(trimmed) <= 8 {
		return "****"
	}
	return trimmed[:4] + "..." + trimmed[len(trimmed)-4:]
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}
	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a Parkyard config file",
		Long:  "Loads the config, applies defaults, checks every field and builds the city it describes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigValidate(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Parkyard config file")
	return cmd
}

func runConfigValidate(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	dir, err := buildDirectory(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Config %q is valid\n", cfg.Name)
	fmt.Fprintf(out, "  zones:    %d\n", dir.Len())
	fmt.Fprintf(out, "  ledger:   max depth %d\n", cfg.Ledger.MaxDepth)
	fmt.Fprintf(out, "  journal:  %s\n", cfg.Journal.Driver)
	fmt.Fprintf(out, "  report:   %s\n", cfg.Report.Schedule)
	fmt.Fprintf(out, "  slack:    %v\n", cfg.Notify.Slack.Enabled())
	fmt.Fprintf(out, "  discord:  %v\n", cfg.Notify.Discord.Enabled())
	for _, d := range dir.DanglingAdjacency() {
		fmt.Fprintf(out, "warning: adjacency %s points at an unknown zone\n", d)
	}
	return nil
}

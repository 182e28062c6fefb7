package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newZonesCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "zones",
		Short: "Show the city layout",
		Long:  "Lists every zone with its areas, slot count and adjacency list.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runZones(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Parkyard config file (empty for the sample city)")
	return cmd
}

func runZones(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	dir, err := buildDirectory(cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ZONE\tNAME\tAREAS\tSLOTS\tADJACENT")
	total := 0
	for _, z := range dir.Zones() {
		areas := make([]string, len(z.Areas))
		for i, a := range z.Areas {
			areas[i] = fmt.Sprintf("%s(%d)", a.ID, len(a.Slots))
		}
		adj := strings.Join(z.Adjacent, ",")
		if adj == "" {
			adj = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", z.ID, z.Name, strings.Join(areas, " "), z.SlotCount(), adj)
		total += z.SlotCount()
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d zones, %d slots\n", dir.Len(), total)
	for _, d := range dir.DanglingAdjacency() {
		fmt.Fprintf(out, "warning: adjacency %s points at an unknown zone\n", d)
	}
	return nil
}

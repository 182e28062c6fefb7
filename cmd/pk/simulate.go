package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/parkyard/internal/analytics"
	"github.com/zulandar/parkyard/internal/clock"
	"github.com/zulandar/parkyard/internal/parking"
	"github.com/zulandar/parkyard/internal/scenario"
)

func newSimulateCmd() *cobra.Command {
	var (
		configPath   string
		scenarioPath string
		report       bool
		jsonOut      bool
		strict       bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a scenario script against an in-memory city",
		Long:  "Executes park, submit, arrive, depart, cancel, rollback and advance steps from a YAML scenario and prints each outcome.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, simulateOpts{
				configPath:   configPath,
				scenarioPath: scenarioPath,
				report:       report,
				jsonOut:      jsonOut,
				strict:       strict,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Parkyard config file (empty for the sample city)")
	cmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "path to scenario YAML (required)")
	cmd.Flags().BoolVar(&report, "report", false, "print the analytics report after the run")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the analytics export as JSON after the run")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any step fails")
	cmd.MarkFlagRequired("scenario")
	return cmd
}

type simulateOpts struct {
	configPath   string
	scenarioPath string
	report       bool
	jsonOut      bool
	strict       bool
}

func runSimulate(cmd *cobra.Command, opts simulateOpts) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	sc, err := scenario.Load(opts.scenarioPath)
	if err != nil {
		return err
	}
	dir, err := buildDirectory(cfg)
	if err != nil {
		return err
	}

	clk := clock.NewManual(time.Now().UTC().Truncate(time.Second))
	sys := parking.New(dir, parking.Options{
		MaxLedgerDepth: cfg.Ledger.MaxDepth,
		Clock:          clk,
		Logger:         newLogger(cmd.ErrOrStderr(), cfg),
	})
	results := (&scenario.Runner{System: sys, Clock: clk}).Run(sc)

	color := isTerminal(out)
	name := sc.Name
	if name == "" {
		name = opts.scenarioPath
	}
	fmt.Fprintf(out, "Scenario %s (%d steps)\n\n", name, len(results))

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tACTION\tREQUEST\tRESULT\tDETAIL")
	failed := 0
	for _, r := range results {
		detail := r.Detail
		if !r.OK() {
			failed++
			detail = r.Err.Error()
		}
		reqID := r.RequestID
		if reqID == "" {
			reqID = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.Step, r.Action, reqID, stepMark(r.OK(), color), detail)
	}
	w.Flush()

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REQUEST\tVEHICLE\tZONE\tSTATE\tSLOT")
	for _, req := range sys.History() {
		slot := "-"
		if req.Slot != nil {
			slot = req.Slot.String()
			if req.CrossZone {
				slot += " (cross-zone)"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", req.ID, req.Vehicle.ID, req.RequestedZone, stateLabel(req.State, color), slot)
	}
	w.Flush()

	snap := sys.SystemSnapshot()
	fmt.Fprintf(out, "\n%d steps, %d failed. %d/%d slots occupied, ledger depth %d.\n",
		len(results), failed, snap.OccupiedSlots, snap.TotalSlots, snap.LedgerDepth)

	if opts.report || opts.jsonOut {
		export := analytics.Build(sys.History(), snap, clk.Now())
		if opts.report {
			fmt.Fprintln(out)
			if err := export.WriteReport(out); err != nil {
				return err
			}
		}
		if opts.jsonOut {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(export); err != nil {
				return fmt.Errorf("encode analytics: %w", err)
			}
		}
	}

	if opts.strict && failed > 0 {
		return fmt.Errorf("%d of %d steps failed", failed, len(results))
	}
	return nil
}

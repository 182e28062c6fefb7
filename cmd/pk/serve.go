package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/zulandar/parkyard/internal/dashboard"
	"github.com/zulandar/parkyard/internal/db"
	"github.com/zulandar/parkyard/internal/journal"
	"github.com/zulandar/parkyard/internal/notify"
	"github.com/zulandar/parkyard/internal/observability"
	"github.com/zulandar/parkyard/internal/parking"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the parking API and dashboard",
		Long:  "Starts the HTTP API with the event journal, Prometheus metrics, scheduled analytics reports and optional chat alerts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Parkyard config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cmd.ErrOrStderr(), cfg)

	dir, err := buildDirectory(cfg)
	if err != nil {
		return err
	}
	for _, d := range dir.DanglingAdjacency() {
		log.Warn("adjacency points at unknown zone", "edge", d)
	}

	gormDB, err := db.Open(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer db.Close(gormDB)
	j := journal.New(gormDB, log)

	collector, err := observability.NewCollector(prometheus.NewRegistry())
	if err != nil {
		return err
	}

	adapters, err := buildAdapters(cfg.Notify)
	if err != nil {
		return err
	}
	notifier := notify.NewNotifier(adapters, notify.NotifierOpts{Logger: log})

	sys := parking.New(dir, parking.Options{
		MaxLedgerDepth: cfg.Ledger.MaxDepth,
		Logger:         log,
		Observers:      []parking.Observer{j, collector, notifier},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	go notifier.Run(ctx)

	if port <= 0 {
		port = cfg.Dashboard.Port
	}
	log.Info("serving", "name", cfg.Name, "zones", dir.Len(), "journal", cfg.Journal.Driver, "alerts", len(adapters))
	return dashboard.Start(ctx, dashboard.StartOpts{
		Service:        dashboard.NewService(sys, nil, collector),
		Journal:        j,
		Metrics:        collector,
		Logger:         log,
		Port:           port,
		Out:            cmd.OutOrStdout(),
		ReportSchedule: cfg.Report.Schedule,
	})
}

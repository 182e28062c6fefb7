package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/parkyard/internal/journal"
	"github.com/zulandar/parkyard/internal/observability"
)

// StartOpts holds configuration for the dashboard server.
type StartOpts struct {
	Service        *Service
	Journal        *journal.Journal        // optional; enables the event stream and reports
	Metrics        *observability.Collector // optional; enables /metrics
	Logger         *slog.Logger
	Port           int
	Out            io.Writer
	ReportSchedule string // cron expression; empty disables scheduled reports

	// SSE polling intervals, defaults 3s and 15s.
	PollInterval      time.Duration
	HeartbeatInterval time.Duration
}

func (o *StartOpts) applyDefaults() {
	if o.Port <= 0 {
		o.Port = 8080
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 3 * time.Second
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = 15 * time.Second
	}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(opts StartOpts) *gin.Engine {
	opts.applyDefaults()
	router := gin.New()
	router.Use(gin.Recovery())
	registerRoutes(router, opts)
	return router
}

// Start launches the dashboard HTTP server and, when a schedule is set, the
// report job. It blocks until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Service == nil {
		return fmt.Errorf("dashboard: service is required")
	}
	opts.applyDefaults()

	gin.SetMode(gin.ReleaseMode)
	router := NewRouter(opts)

	if opts.ReportSchedule != "" && opts.Journal != nil {
		rep, err := StartReporter(opts.ReportSchedule, opts.Service, opts.Journal, opts.Logger)
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		defer rep.Stop()
	}

	addr := fmt.Sprintf(":%d", opts.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Dashboard running at http://localhost:%d\n", opts.Port)
	}
	opts.Logger.Info("dashboard listening", "addr", addr)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

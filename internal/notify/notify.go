// Package notify forwards noteworthy parking events to chat platforms
// (Slack, Discord). Delivery happens on the Notifier's own goroutine so the
// System is never blocked by a slow platform.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/zulandar/parkyard/internal/parking"
)

// DefaultQueueSize bounds alerts waiting for delivery.
const DefaultQueueSize = 64

// Adapter delivers alerts to one chat platform.
type Adapter interface {
	// Name identifies the platform in logs, e.g. "slack".
	Name() string

	// Send delivers one alert.
	Send(ctx context.Context, alert Alert) error

	// Close releases any platform connection.
	Close() error
}

// Alert is a platform-neutral chat message.
type Alert struct {
	Title    string  // headline, e.g. "No slot for R0005"
	Body     string  // detail text
	Severity string  // "info", "warning", "error"
	Color    string  // sidebar color hint, e.g. "#daa038"
	Fields   []Field // key-value metadata pairs
}

// Field is a key-value pair displayed with an alert.
type Field struct {
	Name  string
	Value string
	Short bool // hint: render side-by-side with another field
}

// Notifier is a parking.Observer that turns selected events into alerts and
// queues them for delivery by Run.
type Notifier struct {
	adapters []Adapter
	queue    chan Alert
	log      *slog.Logger

	mu      sync.Mutex
	dropped int
}

// NotifierOpts configures a Notifier.
type NotifierOpts struct {
	QueueSize int // DefaultQueueSize when <= 0
	Logger    *slog.Logger
}

// NewNotifier creates a Notifier delivering to adapters.
func NewNotifier(adapters []Adapter, opts NotifierOpts) *Notifier {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Notifier{
		adapters: adapters,
		queue:    make(chan Alert, opts.QueueSize),
		log:      opts.Logger,
	}
}

// Observe queues an alert for e when it warrants one. A full queue drops the
// alert rather than blocking the caller.
func (n *Notifier) Observe(e parking.Event) {
	alert, ok := FormatEvent(e)
	if !ok || len(n.adapters) == 0 {
		return
	}
	select {
	case n.queue <- alert:
	default:
		n.mu.Lock()
		n.dropped++
		n.mu.Unlock()
		n.log.Warn("notify queue full, alert dropped", "title", alert.Title)
	}
}

// Dropped returns how many alerts were discarded because the queue was full.
func (n *Notifier) Dropped() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dropped
}

// Run delivers queued alerts until ctx is cancelled, then closes every adapter.
func (n *Notifier) Run(ctx context.Context) {
	defer n.closeAdapters()
	for {
		select {
		case <-ctx.Done():
			return
		case alert := <-n.queue:
			n.deliver(ctx, alert)
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, alert Alert) {
	for _, a := range n.adapters {
		if err := a.Send(ctx, alert); err != nil {
			n.log.Error("alert delivery failed", "adapter", a.Name(), "title", alert.Title, "err", err)
		}
	}
}

func (n *Notifier) closeAdapters() {
	for _, a := range n.adapters {
		if err := a.Close(); err != nil {
			n.log.Warn("close adapter", "adapter", a.Name(), "err", err)
		}
	}
}

// Package observability exposes parking activity as Prometheus metrics.
package observability

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zulandar/parkyard/internal/parking"
)

// Collector bundles the parkyard metrics. It implements parking.Observer for
// the counters; gauges are refreshed from snapshots with SetSnapshot.
type Collector struct {
	gatherer prometheus.Gatherer

	Events             *prometheus.CounterVec
	Allocations        *prometheus.CounterVec
	AllocationFailures prometheus.Counter
	RolledBack         prometheus.Counter
	LedgerEvictions    prometheus.Counter

	ZoneAvailable *prometheus.GaugeVec
	ZoneOccupied  *prometheus.GaugeVec
	LedgerDepth   prometheus.Gauge
	Requests      *prometheus.GaugeVec
}

// NewCollector registers parkyard metrics against reg, defaulting to the
// global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	events, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parkyard_events_total",
		Help: "Committed lifecycle events, labeled by kind.",
	}, []string{"kind"}), "parkyard_events_total")
	if err != nil {
		return nil, err
	}
	allocations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parkyard_allocations_total",
		Help: "Successful slot allocations, labeled by whether they fell back to an adjacent zone.",
	}, []string{"cross_zone"}), "parkyard_allocations_total")
	if err != nil {
		return nil, err
	}
	failures, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parkyard_allocation_failures_total",
		Help: "Submits that found no slot in the requested zone or its neighbours.",
	}), "parkyard_allocation_failures_total")
	if err != nil {
		return nil, err
	}
	rolledBack, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parkyard_rolled_back_total",
		Help: "Allocations undone through the rollback ledger.",
	}), "parkyard_rolled_back_total")
	if err != nil {
		return nil, err
	}
	evictions, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parkyard_ledger_evictions_total",
		Help: "Rollback records dropped because the ledger was full.",
	}), "parkyard_ledger_evictions_total")
	if err != nil {
		return nil, err
	}

	available, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "parkyard_zone_available_slots",
		Help: "Available slots per zone.",
	}, []string{"zone"}), "parkyard_zone_available_slots")
	if err != nil {
		return nil, err
	}
	occupied, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "parkyard_zone_occupied_slots",
		Help: "Occupied slots per zone.",
	}, []string{"zone"}), "parkyard_zone_occupied_slots")
	if err != nil {
		return nil, err
	}
	depth, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "parkyard_ledger_depth",
		Help: "Records currently held by the rollback ledger.",
	}), "parkyard_ledger_depth")
	if err != nil {
		return nil, err
	}
	requests, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "parkyard_requests",
		Help: "Requests in history, labeled by current state.",
	}, []string{"state"}), "parkyard_requests")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:           gatherer,
		Events:             events,
		Allocations:        allocations,
		AllocationFailures: failures,
		RolledBack:         rolledBack,
		LedgerEvictions:    evictions,
		ZoneAvailable:      available,
		ZoneOccupied:       occupied,
		LedgerDepth:        depth,
		Requests:           requests,
	}, nil
}

// Observe counts one committed event.
func (c *Collector) Observe(e parking.Event) {
	if c == nil {
		return
	}
	c.Events.WithLabelValues(string(e.Kind)).Inc()
	switch e.Kind {
	case parking.EventAllocated:
		c.Allocations.WithLabelValues(strconv.FormatBool(e.CrossZone)).Inc()
	case parking.EventAllocationFailed:
		c.AllocationFailures.Inc()
	case parking.EventRolledBack:
		c.RolledBack.Inc()
	case parking.EventLedgerEvicted:
		c.LedgerEvictions.Inc()
	}
}

// SetSnapshot refreshes the occupancy gauges.
func (c *Collector) SetSnapshot(snap parking.SystemSnapshot) {
	if c == nil {
		return
	}
	for _, z := range snap.Zones {
		c.ZoneAvailable.WithLabelValues(z.ID).Set(float64(z.Available))
		c.ZoneOccupied.WithLabelValues(z.ID).Set(float64(z.Occupied))
	}
	for st, n := range snap.ByState {
		c.Requests.WithLabelValues(string(st)).Set(float64(n))
	}
	c.LedgerDepth.Set(float64(snap.LedgerDepth))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("observability: collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("observability: collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("observability: collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("observability: collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

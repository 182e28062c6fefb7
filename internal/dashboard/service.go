package dashboard

import (
	"sync"

	"github.com/zulandar/parkyard/internal/analytics"
	"github.com/zulandar/parkyard/internal/clock"
	"github.com/zulandar/parkyard/internal/observability"
	"github.com/zulandar/parkyard/internal/parking"
)

// Service serializes every call into a parking.System behind one mutex, so
// HTTP handlers and the report job can share it. Metrics gauges are
// refreshed after each mutation.
type Service struct {
	mu      sync.Mutex
	sys     *parking.System
	clock   clock.Clock
	metrics *observability.Collector
}

// NewService wraps sys. clk stamps analytics exports; metrics may be nil.
func NewService(sys *parking.System, clk clock.Clock, metrics *observability.Collector) *Service {
	if clk == nil {
		clk = clock.NewSystem()
	}
	s := &Service{sys: sys, clock: clk, metrics: metrics}
	s.metrics.SetSnapshot(sys.SystemSnapshot())
	return s
}

// Park creates and submits a request for vehicleID in zoneID.
func (s *Service) Park(vehicleID, zoneID string) (parking.Request, parking.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.refresh()
	return s.sys.Park(parking.Vehicle{ID: vehicleID}, zoneID)
}

// Submit allocates a slot for an existing requested request.
func (s *Service) Submit(requestID string) (parking.Request, parking.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.refresh()
	a, err := s.sys.Submit(requestID)
	if err != nil {
		return parking.Request{}, a, err
	}
	req, err := s.sys.Request(requestID)
	return req, a, err
}

// Arrive marks an allocated request occupied.
func (s *Service) Arrive(requestID string) (parking.Request, error) {
	return s.mutate(s.sys.MarkArrived, requestID)
}

// Depart releases an occupied request.
func (s *Service) Depart(requestID string) (parking.Request, error) {
	return s.mutate(s.sys.MarkDeparted, requestID)
}

// Cancel cancels a requested or allocated request.
func (s *Service) Cancel(requestID string) (parking.Request, error) {
	return s.mutate(s.sys.Cancel, requestID)
}

// Rollback undoes the last k allocations.
func (s *Service) Rollback(k int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.refresh()
	return s.sys.RollbackLast(k)
}

// Request returns one request by id.
func (s *Service) Request(requestID string) (parking.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sys.Request(requestID)
}

// Requests returns the full history, or only requests in state when set.
func (s *Service) Requests(state parking.State) []parking.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == "" {
		return s.sys.History()
	}
	return s.sys.RequestsByState(state)
}

// Snapshot returns the system-wide occupancy view.
func (s *Service) Snapshot() parking.SystemSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sys.SystemSnapshot()
}

// Zone returns one zone's occupancy view.
func (s *Service) Zone(zoneID string) (parking.ZoneSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sys.ZoneSnapshot(zoneID)
}

// Ledger returns the rollback records, most recent first.
func (s *Service) Ledger() []parking.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sys.LedgerRecords()
}

// Analytics computes an export from a consistent history and snapshot.
func (s *Service) Analytics() analytics.Export {
	s.mu.Lock()
	defer s.mu.Unlock()
	return analytics.Build(s.sys.History(), s.sys.SystemSnapshot(), s.clock.Now())
}

func (s *Service) mutate(op func(string) (parking.Request, error), requestID string) (parking.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.refresh()
	return op(requestID)
}

// refresh must be called with mu held.
func (s *Service) refresh() {
	if s.metrics != nil {
		s.metrics.SetSnapshot(s.sys.SystemSnapshot())
	}
}

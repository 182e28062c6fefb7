package parking

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/zulandar/parkyard/internal/city"
	"github.com/zulandar/parkyard/internal/clock"
)

// Options configures a System.
type Options struct {
	MaxLedgerDepth int // DefaultMaxDepth when <= 0
	Clock          clock.Clock
	Logger         *slog.Logger
	Observers      []Observer
}

// Assignment is the committed result of a successful Submit.
type Assignment struct {
	RequestID string       `json:"request_id"`
	Slot      city.SlotRef `json:"slot"`
	CrossZone bool         `json:"cross_zone"`
}

// System owns the zone directory, the request history and the rollback
// ledger, and is the only entry point that mutates them. It is not safe for
// concurrent use: callers with more than one actor must serialize access.
type System struct {
	dir       *city.Directory
	alloc     Allocator
	ledger    *Ledger
	history   []*Request
	byID      map[string]*Request
	counter   int
	clock     clock.Clock
	log       *slog.Logger
	observers []Observer
}

// New creates a System over dir.
func New(dir *city.Directory, opts Options) *System {
	if opts.Clock == nil {
		opts.Clock = clock.NewSystem()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &System{
		dir:       dir,
		ledger:    NewLedger(opts.MaxLedgerDepth),
		byID:      make(map[string]*Request),
		clock:     opts.Clock,
		log:       opts.Logger,
		observers: append([]Observer(nil), opts.Observers...),
	}
	s.ledger.OnEvict = s.onEvict
	return s
}

// AddObserver registers o for all subsequent events.
func (s *System) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// CreateRequest records a new request in the requested state. It always succeeds.
func (s *System) CreateRequest(v Vehicle, zoneID string) Request {
	s.counter++
	now := s.clock.Now()
	if v.PreferredZone == "" {
		v.PreferredZone = zoneID
	}
	req := newRequest(requestID(s.counter), v, zoneID, now)
	s.history = append(s.history, req)
	s.byID[req.ID] = req

	s.emit(Event{Kind: EventCreated, RequestID: req.ID, VehicleID: v.ID, ZoneID: zoneID, To: StateRequested, At: now})
	return req.clone()
}

// Submit allocates a slot for a request in the requested state. When no slot
// is found (including an unknown zone) it returns an error matching ErrNoSlot
// and leaves the request untouched. On success the slot occupation, the
// transition to allocated and the ledger record are applied together.
func (s *System) Submit(requestID string) (Assignment, error) {
	req, err := s.require(requestID, StateRequested)
	if err != nil {
		return Assignment{}, err
	}

	now := s.clock.Now()
	res, err := s.alloc.Allocate(req, s.dir)
	if err != nil {
		if errors.Is(err, ErrZoneNotFound) {
			err = fmt.Errorf("%w: %w", ErrNoSlot, err)
		}
		s.log.Warn("allocation failed", "request", req.ID, "zone", req.RequestedZone, "err", err)
		s.emit(Event{Kind: EventAllocationFailed, RequestID: req.ID, VehicleID: req.Vehicle.ID, ZoneID: req.RequestedZone, From: req.State, At: now, Detail: err.Error()})
		return Assignment{}, err
	}

	if err := res.Slot.Occupy(req.Vehicle.ID); err != nil {
		return Assignment{}, fmt.Errorf("parking: submit %s: %w", req.ID, err)
	}
	previous := req.State
	if err := req.Transition(StateAllocated, now); err != nil {
		res.Slot.Release()
		return Assignment{}, fmt.Errorf("parking: submit %s: %w", req.ID, err)
	}
	ref := res.Slot.Ref()
	req.Slot = &ref
	req.CrossZone = res.CrossZone
	s.ledger.Record(req.ID, ref, previous, now)

	s.log.Debug("allocated", "request", req.ID, "slot", ref.String(), "cross_zone", res.CrossZone)
	s.emit(Event{Kind: EventAllocated, RequestID: req.ID, VehicleID: req.Vehicle.ID, ZoneID: req.RequestedZone, Slot: &ref, CrossZone: res.CrossZone, From: previous, To: StateAllocated, At: now})
	return Assignment{RequestID: req.ID, Slot: ref, CrossZone: res.CrossZone}, nil
}

// Park creates a request and submits it in one step. The request is
// returned even when allocation fails.
func (s *System) Park(v Vehicle, zoneID string) (Request, Assignment, error) {
	req := s.CreateRequest(v, zoneID)
	a, err := s.Submit(req.ID)
	cur := s.byID[req.ID].clone()
	return cur, a, err
}

// MarkArrived moves an allocated request to occupied.
func (s *System) MarkArrived(requestID string) (Request, error) {
	req, err := s.require(requestID, StateAllocated)
	if err != nil {
		return Request{}, err
	}
	now := s.clock.Now()
	if err := req.Transition(StateOccupied, now); err != nil {
		return Request{}, fmt.Errorf("parking: arrive %s: %w", req.ID, err)
	}
	s.emit(Event{Kind: EventArrived, RequestID: req.ID, VehicleID: req.Vehicle.ID, ZoneID: req.RequestedZone, Slot: copyRef(req.Slot), CrossZone: req.CrossZone, From: StateAllocated, To: StateOccupied, At: now})
	return req.clone(), nil
}

// MarkDeparted releases the slot of an occupied request and moves it to released.
func (s *System) MarkDeparted(requestID string) (Request, error) {
	req, err := s.require(requestID, StateOccupied)
	if err != nil {
		return Request{}, err
	}
	now := s.clock.Now()
	s.releaseSlot(req)
	if err := req.Transition(StateReleased, now); err != nil {
		return Request{}, fmt.Errorf("parking: depart %s: %w", req.ID, err)
	}
	s.emit(Event{Kind: EventDeparted, RequestID: req.ID, VehicleID: req.Vehicle.ID, ZoneID: req.RequestedZone, Slot: copyRef(req.Slot), CrossZone: req.CrossZone, From: StateOccupied, To: StateReleased, At: now})
	return req.clone(), nil
}

// Cancel cancels a requested or allocated request, freeing its slot if it had one.
func (s *System) Cancel(requestID string) (Request, error) {
	req, err := s.require(requestID, StateRequested, StateAllocated)
	if err != nil {
		return Request{}, err
	}
	now := s.clock.Now()
	from := req.State
	if from == StateAllocated {
		s.releaseSlot(req)
	}
	if err := req.Transition(StateCancelled, now); err != nil {
		return Request{}, fmt.Errorf("parking: cancel %s: %w", req.ID, err)
	}
	s.emit(Event{Kind: EventCancelled, RequestID: req.ID, VehicleID: req.Vehicle.ID, ZoneID: req.RequestedZone, Slot: copyRef(req.Slot), CrossZone: req.CrossZone, From: from, To: StateCancelled, At: now})
	return req.clone(), nil
}

// RollbackLast undoes the k most recent allocations and returns the affected
// request ids, most recent first.
func (s *System) RollbackLast(k int) ([]string, error) {
	recs, err := s.ledger.Rollback(k, s.dir, func(id string) (*Request, bool) {
		r, ok := s.byID[id]
		return r, ok
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.RequestID
		req := s.byID[rec.RequestID]
		slot := rec.Slot
		s.emit(Event{Kind: EventRolledBack, RequestID: rec.RequestID, VehicleID: req.Vehicle.ID, ZoneID: req.RequestedZone, Slot: &slot, To: rec.PreviousState, At: now})
	}
	s.log.Info("rolled back allocations", "count", len(ids), "requests", ids)
	return ids, nil
}

// Request returns a copy of the request with the given id.
func (s *System) Request(requestID string) (Request, error) {
	req, err := s.lookup(requestID)
	if err != nil {
		return Request{}, err
	}
	return req.clone(), nil
}

// History returns copies of every request in creation order.
func (s *System) History() []Request {
	out := make([]Request, len(s.history))
	for i, r := range s.history {
		out[i] = r.clone()
	}
	return out
}

// RequestsByState returns copies of the requests currently in state.
func (s *System) RequestsByState(state State) []Request {
	var out []Request
	for _, r := range s.history {
		if r.State == state {
			out = append(out, r.clone())
		}
	}
	return out
}

// ActiveForVehicle returns the most recent request of vehicleID that is in state.
func (s *System) ActiveForVehicle(vehicleID string, state State) (Request, error) {
	for i := len(s.history) - 1; i >= 0; i-- {
		r := s.history[i]
		if r.Vehicle.ID == vehicleID && r.State == state {
			return r.clone(), nil
		}
	}
	return Request{}, fmt.Errorf("parking: no %s request for vehicle %s: %w", state, vehicleID, ErrRequestNotFound)
}

// ZoneIDs returns zone ids in directory order.
func (s *System) ZoneIDs() []string {
	return s.dir.IDs()
}

// ZoneSnapshot returns the occupancy view of one zone.
func (s *System) ZoneSnapshot(zoneID string) (ZoneSnapshot, error) {
	z, ok := s.dir.Zone(zoneID)
	if !ok {
		return ZoneSnapshot{}, fmt.Errorf("parking: zone %s: %w", zoneID, ErrZoneNotFound)
	}
	return snapshotZone(z), nil
}

// SystemSnapshot returns every zone plus request and ledger counters.
func (s *System) SystemSnapshot() SystemSnapshot {
	snap := SystemSnapshot{
		TotalZones:     s.dir.Len(),
		TotalRequests:  len(s.history),
		ByState:        make(map[State]int, len(States)),
		LedgerDepth:    s.ledger.Depth(),
		LedgerMaxDepth: s.ledger.MaxDepth(),
		LedgerEvicted:  s.ledger.Evicted(),
	}
	for _, z := range s.dir.Zones() {
		zs := snapshotZone(z)
		snap.Zones = append(snap.Zones, zs)
		snap.TotalSlots += zs.Total
		snap.AvailableSlots += zs.Available
	}
	snap.OccupiedSlots = snap.TotalSlots - snap.AvailableSlots
	for _, st := range States {
		snap.ByState[st] = 0
	}
	for _, r := range s.history {
		snap.ByState[r.State]++
	}
	return snap
}

// LedgerRecords returns the rollback history, most recent first.
func (s *System) LedgerRecords() []Record {
	return s.ledger.Records()
}

func (s *System) lookup(requestID string) (*Request, error) {
	req, ok := s.byID[requestID]
	if !ok {
		return nil, fmt.Errorf("parking: %w: %s", ErrRequestNotFound, requestID)
	}
	return req, nil
}

// require looks up a request and checks it is in one of the given states.
func (s *System) require(requestID string, states ...State) (*Request, error) {
	req, err := s.lookup(requestID)
	if err != nil {
		return nil, err
	}
	for _, st := range states {
		if req.State == st {
			return req, nil
		}
	}
	return nil, &StateError{RequestID: req.ID, Actual: req.State, Required: states}
}

func (s *System) releaseSlot(req *Request) {
	if req.Slot == nil {
		return
	}
	if slot, ok := s.dir.Slot(*req.Slot); ok {
		slot.Release()
	}
}

func (s *System) onEvict(rec Record) {
	s.log.Warn("rollback ledger full, dropped oldest record", "request", rec.RequestID, "slot", rec.Slot.String(), "max_depth", s.ledger.MaxDepth())
	slot := rec.Slot
	s.emit(Event{Kind: EventLedgerEvicted, RequestID: rec.RequestID, Slot: &slot, At: s.clock.Now(), Detail: fmt.Sprintf("evicted %d total", s.ledger.Evicted())})
}

func (s *System) emit(e Event) {
	for _, o := range s.observers {
		o.Observe(e)
	}
}

func copyRef(r *city.SlotRef) *city.SlotRef {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

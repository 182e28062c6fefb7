package parking

import (
	"fmt"
	"time"

	"github.com/zulandar/parkyard/internal/city"
)

// DefaultMaxDepth is the ledger capacity when none is given.
const DefaultMaxDepth = 100

// Record is an immutable snapshot of one committed allocation.
type Record struct {
	RequestID     string       `json:"request_id"`
	Slot          city.SlotRef `json:"slot"`
	PreviousState State        `json:"previous_state"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Ledger is the bounded undo history of allocations. Pops come from the top
// (most recent); overflow evicts from the bottom (oldest).
type Ledger struct {
	records  []Record // oldest first
	maxDepth int
	evicted  int

	// OnEvict, when set, is called with each record dropped by overflow.
	OnEvict func(Record)
}

// NewLedger returns an empty ledger holding at most maxDepth records.
func NewLedger(maxDepth int) *Ledger {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Ledger{maxDepth: maxDepth}
}

// Record pushes an allocation. previous must be the request state as it was
// immediately before the allocation.
func (l *Ledger) Record(requestID string, slot city.SlotRef, previous State, now time.Time) {
	l.records = append(l.records, Record{
		RequestID:     requestID,
		Slot:          slot,
		PreviousState: previous,
		CreatedAt:     now,
	})
	for len(l.records) > l.maxDepth {
		oldest := l.records[0]
		l.records = append(l.records[:0:0], l.records[1:]...)
		l.evicted++
		if l.OnEvict != nil {
			l.OnEvict(oldest)
		}
	}
}

// Rollback pops the k most recent records and reverses each one: the slot is
// released and the request is force-restored to its pre-allocation state.
// Records are returned most recent first. Every record is resolved before
// anything is mutated, so a failed call leaves the ledger and all state as is.
func (l *Ledger) Rollback(k int, dir *city.Directory, lookup func(id string) (*Request, bool)) ([]Record, error) {
	if k <= 0 {
		return nil, fmt.Errorf("parking: rollback %d: count must be greater than 0: %w", k, ErrInvalidCount)
	}
	if k > len(l.records) {
		return nil, fmt.Errorf("parking: rollback %d: only %d available: %w", k, len(l.records), ErrInsufficientHistory)
	}

	top := len(l.records) - k
	type reversal struct {
		rec  Record
		req  *Request
		slot *city.Slot
	}
	plan := make([]reversal, 0, k)
	for i := len(l.records) - 1; i >= top; i-- {
		rec := l.records[i]
		req, ok := lookup(rec.RequestID)
		if !ok {
			return nil, fmt.Errorf("parking: rollback: %w: %s", ErrRequestNotFound, rec.RequestID)
		}
		slot, ok := dir.Slot(rec.Slot)
		if !ok {
			return nil, fmt.Errorf("parking: rollback %s: slot %s not in directory", rec.RequestID, rec.Slot)
		}
		plan = append(plan, reversal{rec: rec, req: req, slot: slot})
	}

	out := make([]Record, 0, k)
	for _, p := range plan {
		p.slot.Release()
		p.req.restore(p.rec.PreviousState)
		out = append(out, p.rec)
	}
	l.records = l.records[:top]
	return out, nil
}

// Depth is the number of records currently held.
func (l *Ledger) Depth() int { return len(l.records) }

// MaxDepth is the capacity.
func (l *Ledger) MaxDepth() int { return l.maxDepth }

// Evicted counts records dropped by overflow since creation.
func (l *Ledger) Evicted() int { return l.evicted }

// Records returns a copy of the held records, most recent first.
func (l *Ledger) Records() []Record {
	out := make([]Record, len(l.records))
	for i, r := range l.records {
		out[len(l.records)-1-i] = r
	}
	return out
}

// Clear drops every record without reversing anything.
func (l *Ledger) Clear() {
	l.records = nil
}

package parking

import (
	"fmt"

	"github.com/zulandar/parkyard/internal/city"
)

// Allocation is the outcome of a successful slot search.
type Allocation struct {
	Slot      *city.Slot
	CrossZone bool
}

// Allocator picks a slot for a request: first the requested zone, then its
// direct neighbours in adjacency order. It never mutates the directory.
type Allocator struct{}

// Allocate returns the first free slot for req. It fails with ErrZoneNotFound
// when the requested zone is unknown and ErrNoSlot when both strategies are
// exhausted.
func (Allocator) Allocate(req *Request, dir *city.Directory) (Allocation, error) {
	zone, ok := dir.Zone(req.RequestedZone)
	if !ok {
		return Allocation{}, fmt.Errorf("parking: allocate %s: zone %s: %w", req.ID, req.RequestedZone, ErrZoneNotFound)
	}

	if s := zone.FirstAvailable(); s != nil {
		return Allocation{Slot: s}, nil
	}

	// Single hop only.
	for _, adjID := range zone.Adjacent {
		adj, ok := dir.Zone(adjID)
		if !ok {
			continue
		}
		if s := adj.FirstAvailable(); s != nil {
			return Allocation{Slot: s, CrossZone: true}, nil
		}
	}

	return Allocation{}, fmt.Errorf("parking: allocate %s: no slot in %s or adjacent zones: %w", req.ID, req.RequestedZone, ErrNoSlot)
}

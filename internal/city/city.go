// Package city holds the static containment hierarchy (zone → area → slot)
// and the zone adjacency graph.
package city

import (
	"errors"
	"fmt"
)

// ErrSlotOccupied is returned when occupying a slot that already has an occupant.
var ErrSlotOccupied = errors.New("slot already occupied")

// SlotRef addresses a slot by lookup instead of by pointer.
type SlotRef struct {
	ZoneID string `json:"zone_id"`
	SlotID string `json:"slot_id"`
}

func (r SlotRef) String() string {
	return r.ZoneID + "/" + r.SlotID
}

// Slot is the atomic allocatable unit.
type Slot struct {
	ID        string
	ZoneID    string
	Available bool
	Occupant  string // vehicle id, empty when free
}

// Ref returns the indexed reference for s.
func (s *Slot) Ref() SlotRef {
	return SlotRef{ZoneID: s.ZoneID, SlotID: s.ID}
}

// Occupy marks the slot as taken by vehicleID.
func (s *Slot) Occupy(vehicleID string) error {
	if !s.Available {
		return fmt.Errorf("city: slot %s: %w", s.ID, ErrSlotOccupied)
	}
	s.Available = false
	s.Occupant = vehicleID
	return nil
}

// Release frees the slot. Releasing a free slot is a no-op.
func (s *Slot) Release() {
	s.Available = true
	s.Occupant = ""
}

// Area is a named subdivision of a zone that directly contains slots.
type Area struct {
	ID     string
	ZoneID string
	Slots  []*Slot
}

// AddSlot appends a new free slot to the area.
func (a *Area) AddSlot(id string) *Slot {
	s := &Slot{ID: id, ZoneID: a.ZoneID, Available: true}
	a.Slots = append(a.Slots, s)
	return s
}

// Zone is a named region of areas with its own adjacency list.
type Zone struct {
	ID       string
	Name     string
	Areas    []*Area
	Adjacent []string
}

// NewZone returns an empty zone.
func NewZone(id, name string) *Zone {
	return &Zone{ID: id, Name: name}
}

// AddArea appends a new empty area to the zone.
func (z *Zone) AddArea(id string) *Area {
	a := &Area{ID: id, ZoneID: z.ID}
	z.Areas = append(z.Areas, a)
	return a
}

// AddAdjacent registers zoneID as a neighbour. Insertion order is kept and
// duplicates are dropped. The reverse edge is not added.
func (z *Zone) AddAdjacent(zoneID string) {
	if zoneID == "" || zoneID == z.ID {
		return
	}
	for _, id := range z.Adjacent {
		if id == zoneID {
			return
		}
	}
	z.Adjacent = append(z.Adjacent, zoneID)
}

// Slots returns every slot in area order, then slot order.
func (z *Zone) Slots() []*Slot {
	var slots []*Slot
	for _, a := range z.Areas {
		slots = append(slots, a.Slots...)
	}
	return slots
}

// AvailableSlots returns the free slots in scan order.
func (z *Zone) AvailableSlots() []*Slot {
	var slots []*Slot
	for _, a := range z.Areas {
		for _, s := range a.Slots {
			if s.Available {
				slots = append(slots, s)
			}
		}
	}
	return slots
}

// FirstAvailable returns the first free slot in scan order, or nil.
func (z *Zone) FirstAvailable() *Slot {
	for _, a := range z.Areas {
		for _, s := range a.Slots {
			if s.Available {
				return s
			}
		}
	}
	return nil
}

// AvailableCount counts free slots across all areas.
func (z *Zone) AvailableCount() int {
	n := 0
	for _, a := range z.Areas {
		for _, s := range a.Slots {
			if s.Available {
				n++
			}
		}
	}
	return n
}

// SlotCount counts all slots across all areas.
func (z *Zone) SlotCount() int {
	n := 0
	for _, a := range z.Areas {
		n += len(a.Slots)
	}
	return n
}

// Slot finds a slot of this zone by id.
func (z *Zone) Slot(id string) (*Slot, bool) {
	for _, a := range z.Areas {
		for _, s := range a.Slots {
			if s.ID == id {
				return s, true
			}
		}
	}
	return nil, false
}

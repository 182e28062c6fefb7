package city

import (
	"fmt"

	"github.com/zulandar/parkyard/internal/config"
)

// Directory is the set of zones a system allocates from, kept in insertion order.
type Directory struct {
	zones map[string]*Zone
	order []string
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{zones: make(map[string]*Zone)}
}

// Add registers a zone. Zone ids must be unique.
func (d *Directory) Add(z *Zone) error {
	if z == nil || z.ID == "" {
		return fmt.Errorf("city: zone id is required")
	}
	if _, ok := d.zones[z.ID]; ok {
		return fmt.Errorf("city: zone %s already registered", z.ID)
	}
	d.zones[z.ID] = z
	d.order = append(d.order, z.ID)
	return nil
}

// Zone looks up a zone by id.
func (d *Directory) Zone(id string) (*Zone, bool) {
	z, ok := d.zones[id]
	return z, ok
}

// Zones returns all zones in insertion order.
func (d *Directory) Zones() []*Zone {
	zones := make([]*Zone, len(d.order))
	for i, id := range d.order {
		zones[i] = d.zones[id]
	}
	return zones
}

// IDs returns zone ids in insertion order.
func (d *Directory) IDs() []string {
	return append([]string(nil), d.order...)
}

// Len returns the number of zones.
func (d *Directory) Len() int {
	return len(d.order)
}

// Slot resolves a SlotRef.
func (d *Directory) Slot(ref SlotRef) (*Slot, bool) {
	z, ok := d.zones[ref.ZoneID]
	if !ok {
		return nil, false
	}
	return z.Slot(ref.SlotID)
}

// DanglingAdjacency lists "from->to" edges whose target zone is not registered.
func (d *Directory) DanglingAdjacency() []string {
	var out []string
	for _, id := range d.order {
		for _, adj := range d.zones[id].Adjacent {
			if _, ok := d.zones[adj]; !ok {
				out = append(out, id+"->"+adj)
			}
		}
	}
	return out
}

// Build creates a directory from zone configuration. Generated slot ids are
// numbered continuously across the areas of a zone that share a prefix.
func Build(zones []config.ZoneConfig) (*Directory, error) {
	d := NewDirectory()
	for _, zc := range zones {
		z := NewZone(zc.ID, zc.Name)
		next := make(map[string]int)
		seen := make(map[string]bool)
		for _, ac := range zc.Areas {
			a := z.AddArea(ac.ID)
			ids := ac.Slots
			if len(ids) == 0 {
				for i := 0; i < ac.SlotCount; i++ {
					next[ac.SlotPrefix]++
					ids = append(ids, fmt.Sprintf("%s%d", ac.SlotPrefix, next[ac.SlotPrefix]))
				}
			}
			for _, id := range ids {
				if seen[id] {
					return nil, fmt.Errorf("city: zone %s: duplicate slot %s", zc.ID, id)
				}
				seen[id] = true
				a.AddSlot(id)
			}
		}
		for _, adj := range zc.Adjacent {
			z.AddAdjacent(adj)
		}
		if err := d.Add(z); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Sample returns the four-zone demo city: Downtown, Uptown, Midtown and Eastside.
func Sample() *Directory {
	d, err := Build([]config.ZoneConfig{
		{ID: "ZA", Name: "Downtown", Adjacent: []string{"ZB", "ZC"}, Areas: []config.AreaConfig{
			{ID: "AA1", Slots: []string{"SA1", "SA2", "SA3"}},
			{ID: "AA2", Slots: []string{"SA4", "SA5", "SA6"}},
		}},
		{ID: "ZB", Name: "Uptown", Adjacent: []string{"ZA", "ZC"}, Areas: []config.AreaConfig{
			{ID: "AB1", SlotCount: 4, SlotPrefix: "SB"},
		}},
		{ID: "ZC", Name: "Midtown", Adjacent: []string{"ZA", "ZB", "ZD"}, Areas: []config.AreaConfig{
			{ID: "AC1", SlotCount: 5, SlotPrefix: "SC"},
		}},
		{ID: "ZD", Name: "Eastside", Adjacent: []string{"ZC"}, Areas: []config.AreaConfig{
			{ID: "AD1", SlotCount: 3, SlotPrefix: "SD"},
		}},
	})
	if err != nil {
		panic(err)
	}
	return d
}

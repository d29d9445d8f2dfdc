package commands

import "github.com/aatumaykin/nexcrew/internal/constants"

// Capability is the exposure grade of a command on one interface.
type Capability string

const (
	Full     Capability = "full"
	ReadOnly Capability = "readonly"
	Hidden   Capability = "hidden"
	Blocked  Capability = "blocked"
)

// Valid reports whether c is one of the four grades.
func (c Capability) Valid() bool {
	switch c {
	case Full, ReadOnly, Hidden, Blocked:
		return true
	}
	return false
}

// Grid maps every known interface to a grade.
type Grid map[Interface]Capability

// Entry is a descriptor together with its computed grid.
type Entry struct {
	Descriptor Descriptor
	Grid       Grid
}

// Grade returns the grade for iface. Unknown interfaces are hidden.
func (e Entry) Grade(iface Interface) Capability {
	if c, ok := e.Grid[iface]; ok {
		return c
	}
	return Hidden
}

// Commands that the chat bot may show but not run.
var telegramReadOnly = map[string]bool{
	constants.CommandSettings:  true,
	constants.CommandEmployees: true,
	constants.CommandMemory:    true,
	constants.CommandSkills:    true,
}

// Commands that make no sense in the dashboard.
var webHidden = map[string]bool{
	constants.CommandExit:  true,
	constants.CommandClear: true,
	constants.CommandStop:  true,
}

// Catalog grades a registry. It holds no mutable state; grids are computed
// on every call.
type Catalog struct {
	registry []Descriptor
}

// NewCatalog creates a catalog over registry.
func NewCatalog(registry []Descriptor) *Catalog {
	return &Catalog{registry: registry}
}

// DefaultCatalog grades the built-in registry.
func DefaultCatalog() *Catalog {
	return NewCatalog(Registry())
}

// Grid computes the grade of d for every known interface.
func (c *Catalog) Grid(d Descriptor) Grid {
	grid := make(Grid, len(Interfaces))
	for _, iface := range Interfaces {
		grid[iface] = grade(d, iface)
	}
	return grid
}

// Entries grades every registry entry, in registry order.
func (c *Catalog) Entries() []Entry {
	entries := make([]Entry, 0, len(c.registry))
	for _, d := range c.registry {
		entries = append(entries, Entry{Descriptor: d, Grid: c.Grid(d)})
	}
	return entries
}

func grade(d Descriptor, iface Interface) Capability {
	if !d.Declares(iface) {
		return Hidden
	}
	if override, ok := d.Capabilities[iface]; ok && override.Valid() {
		return override
	}
	if d.hiddenOn(iface) {
		return Hidden
	}

	switch {
	case iface == Telegram && telegramReadOnly[d.Name]:
		return ReadOnly
	case iface == Web && webHidden[d.Name]:
		return Hidden
	}
	return Full
}

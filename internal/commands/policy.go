package commands

import "github.com/aatumaykin/nexcrew/internal/constants"

// reserved names are handled natively by the front-ends' own menus.
var reserved = map[string]bool{
	constants.CommandStart: true,
	"menu":                 true,
	"cancel":               true,
}

// Policy answers what an interface may show and run.
type Policy struct {
	catalog *Catalog
}

// NewPolicy creates a policy over catalog.
func NewPolicy(catalog *Catalog) *Policy {
	return &Policy{catalog: catalog}
}

// Visible returns entries graded neither hidden nor blocked on iface.
func (p *Policy) Visible(iface Interface) []Entry {
	return p.filter(func(e Entry) bool {
		g := e.Grade(iface)
		return g != Hidden && g != Blocked
	})
}

// Executable returns entries graded exactly full on iface.
func (p *Policy) Executable(iface Interface) []Entry {
	return p.filter(func(e Entry) bool {
		return e.Grade(iface) == Full
	})
}

// Menu returns the executable entries a front-end should advertise in its
// own command menu.
func (p *Policy) Menu(iface Interface) []Entry {
	return p.filter(func(e Entry) bool {
		return e.Grade(iface) == Full && !reserved[e.Descriptor.Name]
	})
}

// Can reports whether name, or an alias of a command, is executable on iface.
func (p *Policy) Can(iface Interface, name string) bool {
	_, ok := p.find(p.Executable(iface), normalize(name))
	return ok
}

// Lookup finds a visible command by name or alias.
func (p *Policy) Lookup(iface Interface, name string) (Entry, bool) {
	return p.find(p.Visible(iface), normalize(name))
}

func (p *Policy) find(entries []Entry, key string) (Entry, bool) {
	if key == "" {
		return Entry{}, false
	}
	for _, e := range entries {
		if e.Descriptor.Name == key {
			return e, true
		}
	}
	for _, e := range entries {
		for _, a := range e.Descriptor.Aliases {
			if a == key {
				return e, true
			}
		}
	}
	return Entry{}, false
}

func (p *Policy) filter(keep func(Entry) bool) []Entry {
	var out []Entry
	for _, e := range p.catalog.Entries() {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

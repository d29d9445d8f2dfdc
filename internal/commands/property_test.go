package commands

import (
	"testing"

	"pgregory.net/rapid"
)

var capabilities = []Capability{Full, ReadOnly, Hidden, Blocked}

func descriptorGen() *rapid.Generator[Descriptor] {
	return rapid.Custom(func(t *rapid.T) Descriptor {
		d := Descriptor{
			Name:       rapid.SampledFrom([]string{"help", "settings", "exit", "stop", "skills", "deploy", "start", "menu"}).Draw(t, "name"),
			Interfaces: rapid.SliceOfDistinct(rapid.SampledFrom(Interfaces), rapid.ID[Interface]).Draw(t, "interfaces"),
			Hidden:     rapid.Bool().Draw(t, "hidden"),
			HiddenOn:   rapid.SliceOfDistinct(rapid.SampledFrom(Interfaces), rapid.ID[Interface]).Draw(t, "hiddenOn"),
			Aliases:    rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,4}`), 0, 3).Draw(t, "aliases"),
		}
		if rapid.Bool().Draw(t, "hasOverride") {
			d.Capabilities = rapid.MapOf(rapid.SampledFrom(Interfaces), rapid.SampledFrom(capabilities)).Draw(t, "override")
		}
		return d
	})
}

func TestProperty_UndeclaredInterfaceIsHidden(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := descriptorGen().Draw(rt, "descriptor")
		grid := NewCatalog(nil).Grid(d)

		for _, iface := range Interfaces {
			g, ok := grid[iface]
			if !ok {
				rt.Fatalf("grid has no grade for %s", iface)
			}
			if !g.Valid() {
				rt.Fatalf("grade %q for %s is not a known capability", g, iface)
			}
			if !d.Declares(iface) && g != Hidden {
				rt.Fatalf("undeclared %s graded %s, want hidden", iface, g)
			}
		}
	})
}

func TestProperty_ExecutableSubsetOfVisible(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		registry := rapid.SliceOfN(descriptorGen(), 0, 8).Draw(rt, "registry")
		p := NewPolicy(NewCatalog(registry))

		for _, iface := range Interfaces {
			visible := p.Visible(iface)
			for _, e := range visible {
				if g := e.Grade(iface); g == Hidden || g == Blocked {
					rt.Fatalf("visible(%s) contains %s graded %s", iface, e.Descriptor.Name, g)
				}
			}

			remaining := make(map[string]int)
			for _, v := range visible {
				remaining[v.Descriptor.Name]++
			}
			for _, e := range p.Executable(iface) {
				if remaining[e.Descriptor.Name] == 0 {
					rt.Fatalf("executable %s on %s is not visible", e.Descriptor.Name, iface)
				}
				remaining[e.Descriptor.Name]--
			}

			if len(p.Executable(iface)) > len(visible) {
				rt.Fatalf("executable(%s) larger than visible", iface)
			}
			if len(p.Menu(iface)) > len(p.Executable(iface)) {
				rt.Fatalf("menu(%s) larger than executable", iface)
			}
		}
	})
}

func TestProperty_MenuNeverHasReserved(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		registry := rapid.SliceOfN(descriptorGen(), 0, 8).Draw(rt, "registry")
		p := NewPolicy(NewCatalog(registry))

		for _, iface := range Interfaces {
			for _, e := range p.Menu(iface) {
				if reserved[e.Descriptor.Name] {
					rt.Fatalf("menu(%s) contains reserved %s", iface, e.Descriptor.Name)
				}
			}
		}
	})
}

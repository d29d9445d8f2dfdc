package commands

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DetailResult is the outcome of a detail lookup. A miss is reported through
// OK and Message, never as an error.
type DetailResult struct {
	OK      bool
	Text    string
	Message string
}

// Help renders help text from a policy.
type Help struct {
	policy *Policy
}

// NewHelp creates a help renderer.
func NewHelp(policy *Policy) *Help {
	return &Help{policy: policy}
}

// List renders one line per visible command on iface.
func (h *Help) List(iface Interface) string {
	var b strings.Builder
	for _, e := range h.policy.Visible(iface) {
		b.WriteString(usage(e.Descriptor))
		b.WriteString(" - ")
		b.WriteString(e.Descriptor.Description)
		if e.Grade(iface) == ReadOnly {
			b.WriteString(" (read-only)")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Detail renders the full help for the visible command matching query by
// name or alias.
func (h *Help) Detail(iface Interface, query string) DetailResult {
	e, ok := h.policy.Lookup(iface, query)
	if !ok {
		return DetailResult{
			Message: fmt.Sprintf("Unknown command: /%s", normalize(query)),
		}
	}

	d := e.Descriptor
	var b strings.Builder
	b.WriteString(usage(d))
	b.WriteByte('\n')
	b.WriteString(d.Description)
	b.WriteByte('\n')

	if len(d.Aliases) > 0 {
		aliases := make([]string, len(d.Aliases))
		for i, a := range d.Aliases {
			aliases[i] = "/" + a
		}
		b.WriteString("\nAliases: ")
		b.WriteString(strings.Join(aliases, ", "))
		b.WriteByte('\n')
	}

	if len(d.Examples) > 0 {
		b.WriteString("\nExamples:\n")
		for _, ex := range d.Examples {
			b.WriteString("  ")
			b.WriteString(ex)
			b.WriteByte('\n')
		}
	}

	if summary := interfaceSummary(e); summary != "" {
		b.WriteString("\nInterfaces: ")
		b.WriteString(summary)
		b.WriteByte('\n')
	}

	return DetailResult{OK: true, Text: b.String()}
}

func usage(d Descriptor) string {
	if d.Args == "" {
		return "/" + d.Name
	}
	return "/" + d.Name + " " + d.Args
}

// interfaceSummary renders "cli:full, telegram:readonly" for every interface
// the command is not hidden on.
func interfaceSummary(e Entry) string {
	parts := make([]string, 0, len(Interfaces))
	for _, iface := range Interfaces {
		g := e.Grade(iface)
		if g == Hidden {
			continue
		}
		parts = append(parts, string(iface)+":"+string(g))
	}
	return strings.Join(parts, ", ")
}

// normalize turns "/Help@nexcrew_bot" into "help".
func normalize(name string) string {
	name = strings.TrimSpace(norm.NFKC.String(name))
	name = strings.TrimPrefix(name, "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}

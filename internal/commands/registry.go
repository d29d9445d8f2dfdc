// Package commands describes the command surface shared by every front-end.
//
// The registry is a static list of descriptors. The Catalog grades each
// command per interface, Policy filters the catalog into what an interface
// may show and run, and Help renders list and detail text from the policy.
package commands

import "github.com/aatumaykin/nexcrew/internal/constants"

// Interface is a front-end that exposes commands.
type Interface string

const (
	CLI      Interface = "cli"
	Web      Interface = "web"
	Telegram Interface = "telegram"
	REPL     Interface = "repl"
)

// Interfaces lists every known interface in display order.
var Interfaces = []Interface{CLI, Web, Telegram, REPL}

// ParseInterface returns the interface named s.
func ParseInterface(s string) (Interface, bool) {
	for _, i := range Interfaces {
		if string(i) == s {
			return i, true
		}
	}
	return "", false
}

// Descriptor is one registry entry. Descriptors are never modified after
// the registry is built.
type Descriptor struct {
	Name        string
	Args        string
	Description string
	Aliases     []string
	Examples    []string
	Interfaces  []Interface

	// Capabilities overrides the derived grade for declared interfaces.
	Capabilities map[Interface]Capability

	// Hidden downgrades every declared interface to hidden. HiddenOn does
	// the same for the listed interfaces only.
	Hidden   bool
	HiddenOn []Interface
}

// Declares reports whether d lists iface.
func (d Descriptor) Declares(iface Interface) bool {
	for _, i := range d.Interfaces {
		if i == iface {
			return true
		}
	}
	return false
}

func (d Descriptor) hiddenOn(iface Interface) bool {
	if d.Hidden {
		return true
	}
	for _, i := range d.HiddenOn {
		if i == iface {
			return true
		}
	}
	return false
}

var everywhere = []Interface{CLI, Web, Telegram, REPL}

// Registry returns the built-in command list.
func Registry() []Descriptor {
	return []Descriptor{
		{
			Name:        constants.CommandHelp,
			Args:        "[command]",
			Description: "List commands or show details for one",
			Aliases:     []string{"h", "?"},
			Examples:    []string{"/help", "/help heartbeat"},
			Interfaces:  everywhere,
		},
		{
			Name:        constants.CommandStatus,
			Description: "Show scheduler and worklog status",
			Aliases:     []string{"st"},
			Interfaces:  everywhere,
		},
		{
			Name:        constants.CommandHeartbeat,
			Args:        "[list|run <id>]",
			Description: "List heartbeat jobs or run one now",
			Aliases:     []string{"hb"},
			Examples:    []string{"/heartbeat list", "/heartbeat run daily-review"},
			Interfaces:  everywhere,
		},
		{
			Name:        constants.CommandWorklog,
			Args:        "[latest|list]",
			Description: "Show the latest orchestration worklog",
			Aliases:     []string{"wl"},
			Examples:    []string{"/worklog", "/worklog list"},
			Interfaces:  everywhere,
		},
		{
			Name:        constants.CommandSettings,
			Args:        "[key]",
			Description: "Show or change settings",
			Aliases:     []string{"config"},
			Interfaces:  everywhere,
		},
		{
			Name:        constants.CommandEmployees,
			Description: "List employee agents and their roles",
			Aliases:     []string{"team"},
			Interfaces:  everywhere,
		},
		{
			Name:        constants.CommandOrchestrate,
			Args:        "<task>",
			Description: "Start a multi-agent orchestration run",
			Aliases:     []string{"orch"},
			Examples:    []string{"/orchestrate Refactor auth module for token rotation"},
			Interfaces:  everywhere,
			Capabilities: map[Interface]Capability{
				Telegram: Blocked,
			},
		},
		{
			Name:        constants.CommandStop,
			Description: "Stop the running agent session",
			Interfaces:  everywhere,
		},
		{
			Name:        constants.CommandModel,
			Args:        "[name]",
			Description: "Show or switch the model",
			Interfaces:  everywhere,
		},
		{
			Name:        constants.CommandMemory,
			Args:        "[show|clear]",
			Description: "Inspect agent memory",
			Aliases:     []string{"mem"},
			Interfaces:  everywhere,
		},
		{
			Name:        constants.CommandSkills,
			Description: "List installed skills",
			Interfaces:  []Interface{CLI, Web, Telegram},
		},
		{
			Name:        constants.CommandClear,
			Description: "Clear the conversation",
			Aliases:     []string{"new"},
			Interfaces:  everywhere,
		},
		{
			Name:        constants.CommandVersion,
			Description: "Show version information",
			Interfaces:  []Interface{CLI, REPL, Telegram},
		},
		{
			Name:        constants.CommandReset,
			Description: "Reset the session and settings overrides",
			Interfaces:  []Interface{CLI, REPL},
		},
		{
			Name:        constants.CommandStart,
			Description: "Start the chat bot",
			Interfaces:  []Interface{Telegram},
		},
		{
			Name:        constants.CommandExit,
			Description: "Leave the interactive shell",
			Aliases:     []string{"quit", "q"},
			Interfaces:  []Interface{REPL, Web},
		},
		{
			Name:        constants.CommandBrowser,
			Args:        "[url]",
			Description: "Open the automation browser",
			Interfaces:  []Interface{CLI, Web},
		},
		{
			Name:        constants.CommandDebug,
			Description: "Dump internal state",
			Interfaces:  []Interface{CLI, REPL},
			Hidden:      true,
		},
	}
}

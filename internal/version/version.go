// Package version holds build metadata injected through -ldflags.
package version

import "fmt"

var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GoVersion = "unknown"
)

// SetInfo overrides the non-empty build fields.
func SetInfo(v, bt, gc, gv string) {
	if v != "" {
		Version = v
	}
	if bt != "" {
		BuildTime = bt
	}
	if gc != "" {
		GitCommit = gc
	}
	if gv != "" {
		GoVersion = gv
	}
}

// Summary renders the one-line version string used by the CLI and the bot.
func Summary() string {
	return fmt.Sprintf("nexcrew %s (commit %s, built %s, %s)", Version, GitCommit, BuildTime, GoVersion)
}

package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set via -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
// Empty values fall back to the binary's embedded build info.
var (
	version string
	commit  string
	date    string
)

// buildDetails is the resolved version triple shown by the version
// subcommand.
type buildDetails struct {
	Version string
	Commit  string
	Date    string
}

// resolveBuildDetails merges ldflags values with debug.ReadBuildInfo,
// preferring ldflags. Source builds without vcs stamping report
// "(devel)" and "unknown".
func resolveBuildDetails() buildDetails {
	d := buildDetails{Version: version, Commit: commit, Date: date}

	info, ok := debug.ReadBuildInfo()
	if ok {
		if d.Version == "" {
			d.Version = info.Main.Version
		}
		if d.Commit == "" {
			d.Commit = shortRevision(vcsSetting(info, "vcs.revision"))
		}
		if d.Date == "" {
			d.Date = vcsSetting(info, "vcs.time")
		}
	}

	if d.Version == "" {
		d.Version = "(devel)"
	}
	if d.Commit == "" {
		d.Commit = "unknown"
	}
	if d.Date == "" {
		d.Date = "unknown"
	}
	return d
}

// vcsSetting returns the named build setting, or "" when absent.
func vcsSetting(info *debug.BuildInfo, key string) string {
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// shortRevision abbreviates a full commit hash to seven characters.
func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of etymscan.`,
		Run: func(cmd *cobra.Command, _ []string) {
			d := resolveBuildDetails()
			fmt.Fprintf(cmd.OutOrStdout(), "etymscan version %s (commit %s, built %s)\n",
				d.Version, d.Commit, d.Date)
		},
	}
}

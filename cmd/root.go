// Package cmd is the turniptext CLI's command tree, built on kong the
// same way the teacher's command tree was (a single CLI struct of
// kong-tagged sub-commands, each with its own Run method).
package cmd

import (
	kongcompletion "github.com/jotaen/kong-completion"
)

// CLI is the root command set: parse a file, watch it for changes,
// print build info, or generate shell completions.
type CLI struct {
	Parse      ParseCmd                  `cmd:"" help:"Parse a turnip-text source file and report its structure or diagnostics."`
	Watch      WatchCmd                  `cmd:"" help:"Re-parse a file on every save."`
	Version    VersionCmd                `cmd:"" help:"Show build information."`
	Completion kongcompletion.Completion `cmd:"" help:"Generate shell completions."`
}

package main

import (
	"github.com/alecthomas/kong"

	"github.com/turniptext/turniptext/cmd"
	"github.com/turniptext/turniptext/internal/config"
	"github.com/turniptext/turniptext/internal/theme"
)

func main() {
	cli := &cmd.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("turniptext"),
		kong.Description("Parse turnip-text markup with embedded code"),
		kong.UsageOnError(),
	)

	// Load config and apply theme. Ignore errors - theme will default
	// to "default" if no turniptext.yaml is found.
	cfg, err := config.Load()
	if err == nil {
		_ = theme.Load(cfg.Theme)
	}

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

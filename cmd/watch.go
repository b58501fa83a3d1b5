package cmd

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
)

// WatchCmd re-parses and re-reports a file's diagnostics every time it
// is saved (SPEC_FULL.md's domain-stack table entry for fsnotify),
// until interrupted.
type WatchCmd struct {
	Path           string `arg:"" help:"Path to the turnip-text source file to watch."`
	RecursionLimit int    `help:"Override the file-inclusion recursion limit (0 uses the config/library default)." default:"0"`
	Color          string `help:"Color diagnostics output." enum:"auto,always,never" default:"auto"`
}

func (c *WatchCmd) Run() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(c.Path); err != nil {
		return fmt.Errorf("watching %s: %w", c.Path, err)
	}

	run := func() {
		pc := &ParseCmd{Path: c.Path, RecursionLimit: c.RecursionLimit, Color: c.Color}
		if err := pc.Run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	run()

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				run()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "watch error:", err)
		}
	}
}

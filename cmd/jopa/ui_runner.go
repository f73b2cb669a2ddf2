package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"jopa/internal/driver"
	"jopa/internal/ui"
)

type resolveOutcome struct {
	result *driver.Result
	err    error
}

// runResolveWithUI resolves paths while a progress view follows the driver's
// phase events. summary renders the last frame once the run is over.
func runResolveWithUI(ctx context.Context, title string, paths []string, opts driver.Options, summary func(*driver.Result, time.Duration) string, progOpts ...tea.ProgramOption) (*driver.Result, error) {
	events := make(chan driver.PhaseEvent, 256)
	outcomeCh := make(chan resolveOutcome, 1)
	var final string

	go func() {
		runOpts := opts
		runOpts.Observer = func(ev driver.PhaseEvent) {
			if opts.Observer != nil {
				opts.Observer(ev)
			}
			events <- ev
		}
		start := time.Now()
		res, err := driver.ResolveFiles(ctx, paths, runOpts)
		if err == nil {
			final = summary(res, time.Since(start))
		}
		outcomeCh <- resolveOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, paths, events, func() string { return final })
	program := tea.NewProgram(model, progOpts...)
	_, uiErr := program.Run()
	// After an early quit the workers still send until the run ends.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}

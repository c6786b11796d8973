package suno

import (
	"context"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser"
)

// Probe is an optional side effect run at the start of each poll tick. Its result
// never decides readiness.
type Probe interface {
	Run(ctx context.Context, page browser.Page) error
}

// ProbeFunc adapts a function to Probe
type ProbeFunc func(ctx context.Context, page browser.Page) error

// Run calls f
func (f ProbeFunc) Run(ctx context.Context, page browser.Page) error {
	return f(ctx, page)
}

// PlayProbe presses the first visible play button, which nudges the site into
// finishing a pending render
type PlayProbe struct{}

// Run clicks the play button, ErrNotFound when none is visible
func (PlayProbe) Run(ctx context.Context, page browser.Page) error {
	play, err := browser.FirstVisible(ctx, page, browser.CSS(playButtonSelector))
	if err != nil {
		return err
	}
	return play.Click(ctx)
}

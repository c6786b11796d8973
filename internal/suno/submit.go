package suno

import (
	"context"
	"errors"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/common/errorwrapper"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/config"
)

// submitControl is a located Create button
type submitControl struct {
	el       browser.Element
	disabled bool
}

// Submit checks the credit balance and activates the Create button
func (b *Bot) Submit(ctx context.Context) error {
	control, err := b.locateSubmit(ctx)
	if err != nil {
		return err
	}
	return b.activateSubmit(ctx, control)
}

func (b *Bot) checkQuota(ctx context.Context) error {
	if browser.AnyVisible(ctx, b.page, quotaIndicators...) {
		b.logger.Warn().Msg("Account is out of credits.")
		return ErrQuotaExceeded
	}
	return ctx.Err()
}

// locateSubmit waits for a Create button, preferring one that is enabled
func (b *Bot) locateSubmit(ctx context.Context) (*submitControl, error) {
	if err := b.checkQuota(ctx); err != nil {
		return nil, err
	}

	first, _, err := browser.WaitVisible(ctx, b.page, config.Milliseconds(b.config.SubmitTimeoutMs), createButton, createButtonLabel)
	if err != nil {
		if errors.Is(err, browser.ErrNotFound) {
			return nil, ErrSubmitControlNotFound
		}
		return nil, err
	}

	for _, loc := range []browser.Locator{createButton, createButtonLabel} {
		candidates, err := b.page.Query(ctx, loc)
		if err != nil {
			return nil, err
		}
		for _, el := range candidates {
			visible, err := el.Visible(ctx)
			if err != nil || !visible {
				continue
			}
			if !isDisabled(ctx, el) {
				return &submitControl{el: el}, nil
			}
		}
	}

	b.logger.Warn().Msg("Create button is disabled, will force the click.")
	return &submitControl{el: first, disabled: true}, nil
}

func (b *Bot) activateSubmit(ctx context.Context, control *submitControl) error {
	var err error
	if control.disabled {
		err = control.el.ForceClick(ctx)
	} else {
		err = control.el.Click(ctx)
	}
	if err != nil {
		return errorwrapper.NewBrowserError("click", "Create button", err)
	}
	b.logger.Info().Bool("forced", control.disabled).Msg("Clicked Create.")
	return nil
}

func isDisabled(ctx context.Context, el browser.Element) bool {
	if _, ok, _ := el.Attribute(ctx, "disabled"); ok {
		return true
	}
	v, ok, _ := el.Attribute(ctx, "aria-disabled")
	return ok && v == "true"
}

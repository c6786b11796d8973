package suno

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/config"
)

const headlessWarningAttempt = 2

// The prompt label must be visible, the profile menu and an editable control
// only need to exist.
var (
	visibleLoginIndicators = []browser.Locator{browser.Text(songDescriptionText)}
	presentLoginIndicators = []browser.Locator{browser.CSS(profileMenuSelector), browser.CSS(editableSelector)}
)

// EnsureAuthenticated opens the create page and waits until the logged-in UI shows up.
// Session state is saved on success.
func (b *Bot) EnsureAuthenticated(ctx context.Context) error {
	target := b.config.CreateURL()
	b.logger.Info().Str("url", target).Msg("Checking login state.")

	if err := b.page.Navigate(ctx, target); err != nil {
		if errors.Is(err, browser.ErrPageClosed) || ctx.Err() != nil {
			return err
		}
		b.logger.Warn().Err(err).Str("url", target).Msg("Navigation did not complete, checking page anyway")
	}

	poll := config.Milliseconds(b.config.LoginPollMs)
	for attempt := 0; attempt < b.config.LoginAttempts; attempt++ {
		ok, err := b.authenticated(ctx)
		if err != nil {
			return err
		}
		if ok {
			b.logger.Info().Int("attempt", attempt+1).Msg("Login confirmed.")
			b.saveState(ctx)
			return nil
		}

		if attempt == headlessWarningAttempt && b.headless {
			b.logger.Warn().Msg("Not logged in and the browser is headless. Run 'sunobot login' to sign in with a visible window.")
		} else {
			b.logger.Info().Int("attempt", attempt+1).Int("max_attempts", b.config.LoginAttempts).Msg("Waiting for login...")
		}

		if err := browser.Sleep(ctx, poll); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w after %d attempts", ErrAuthTimeout, b.config.LoginAttempts)
}

func (b *Bot) authenticated(ctx context.Context) (bool, error) {
	if b.page.Closed() {
		return false, browser.ErrPageClosed
	}
	current, err := b.page.URL(ctx)
	if err != nil {
		if errors.Is(err, browser.ErrPageClosed) || ctx.Err() != nil {
			return false, err
		}
		b.logger.Debug().Err(err).Msg("Failed to read page URL")
		return false, nil
	}
	if !strings.Contains(current, b.config.CreatePath) {
		return false, nil
	}
	if browser.AnyVisible(ctx, b.page, visibleLoginIndicators...) {
		return true, nil
	}
	return browser.AnyPresent(ctx, b.page, presentLoginIndicators...), nil
}

func (b *Bot) saveState(ctx context.Context) {
	if b.saver == nil {
		return
	}
	if err := b.saver.SaveState(ctx); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to save session state")
		return
	}
	b.logger.Info().Msg("Session state saved.")
}

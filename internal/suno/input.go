package suno

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/common/errorwrapper"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/config"
)

const verifyPrefixRunes = 3

func (b *Bot) promptStrategies() []browser.Strategy {
	return []browser.Strategy{
		browser.VisibleStrategy("placeholder", b.page, browser.CSS(placeholderSelector), nil),
		browser.VisibleStrategy("editable-role", b.page, browser.CSS(editableRoleSelector), nil),
		browser.VisibleStrategy("textarea", b.page, browser.CSS("textarea"), nil),
		browser.VisibleStrategy("aria-label", b.page, browser.CSS(ariaLabelInputSelector), editableNonButton),
	}
}

// editableNonButton rejects labelled buttons that share the input's aria-label
func editableNonButton(ctx context.Context, el browser.Element) (bool, error) {
	tag, err := el.TagName(ctx)
	if err != nil {
		return false, err
	}
	if tag == "button" {
		return false, nil
	}
	return el.Editable(ctx)
}

// BindPrompt types text into the song description input and confirms the
// application registered it
func (b *Bot) BindPrompt(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyPrompt
	}

	input, strategy, err := browser.TryEach(ctx, b.logger, "prompt input", b.promptStrategies()...)
	if err != nil {
		if errors.Is(err, browser.ErrNotFound) {
			return ErrInputNotFound
		}
		return err
	}
	b.logger.Info().Str("strategy", strategy).Msg("Found prompt input.")

	if err := input.Click(ctx); err != nil {
		b.logger.Debug().Err(err).Msg("Click on prompt input failed, focusing instead")
		if err := input.Focus(ctx); err != nil {
			return errorwrapper.NewBrowserError("focus", "prompt input", err)
		}
	}
	if err := browser.Sleep(ctx, config.Milliseconds(b.config.FocusDelayMs)); err != nil {
		return err
	}

	if err := b.page.ClearFocused(ctx); err != nil {
		return errorwrapper.NewBrowserError("clear", "prompt input", err)
	}
	if err := b.page.TypeText(ctx, text, config.Milliseconds(b.config.KeyDelayMs)); err != nil {
		return errorwrapper.NewBrowserError("type", "prompt input", err)
	}
	if err := browser.Sleep(ctx, config.Milliseconds(b.config.AfterTypeDelayMs)); err != nil {
		return err
	}

	if err := b.verifyPrompt(ctx, input, text); err != nil {
		return err
	}

	if err := b.page.ClickAt(ctx, 0, 0); err != nil {
		b.logger.Debug().Err(err).Msg("Failed to blur prompt input")
	}
	return browser.Sleep(ctx, config.Milliseconds(b.config.BlurDelayMs))
}

// verifyPrompt falls back to a programmatic fill when the framework dropped the
// synthetic key events
func (b *Bot) verifyPrompt(ctx context.Context, input browser.Element, text string) error {
	value, err := input.Value(ctx)
	if err != nil {
		b.logger.Debug().Err(err).Msg("Failed to read prompt input value")
	}
	if strings.Contains(value, promptPrefix(text)) {
		return nil
	}

	b.logger.Warn().Str("value", value).Msg("Typed prompt not registered, filling programmatically")
	if err := input.Fill(ctx, text); err != nil {
		return errorwrapper.NewBrowserError("fill", "prompt input", err)
	}
	return nil
}

func promptPrefix(text string) string {
	if utf8.RuneCountInString(text) <= verifyPrefixRunes {
		return text
	}
	return string([]rune(text)[:verifyPrefixRunes])
}

// SetInstrumental clicks the instrumental toggle when it is in the other state.
// A missing toggle is not an error.
func (b *Bot) SetInstrumental(ctx context.Context, on bool) {
	selector := disableInstrumentalSelector
	if on {
		selector = enableInstrumentalSelector
	}

	toggle, err := browser.FirstVisible(ctx, b.page, browser.CSS(selector))
	if err != nil {
		b.logger.Debug().Bool("instrumental", on).Msg("Instrumental toggle not found or already set.")
		return
	}
	if err := toggle.Click(ctx); err != nil {
		b.logger.Warn().Err(err).Bool("instrumental", on).Msg("Failed to toggle instrumental mode")
		return
	}
	b.logger.Info().Bool("instrumental", on).Msg("Instrumental mode toggled.")
}

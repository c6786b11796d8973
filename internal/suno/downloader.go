package suno

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/config"
)

// DownloadRow saves one song through its overlay menu: trigger, Download, MP3 Audio,
// and the optional "Download Anyway" confirmation. hint names the file when the
// site suggests none. The overlay is dismissed on every return path.
func (b *Bot) DownloadRow(ctx context.Context, trigger browser.Element, targetDir, hint string) (string, error) {
	defer b.dismiss(ctx)

	visible, err := trigger.Visible(ctx)
	if err != nil || !visible {
		return "", ErrRowNotReady
	}
	if err := trigger.Click(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRowNotReady, err)
	}

	menuTimeout := config.Milliseconds(b.config.MenuTimeoutMs)
	entry, _, err := browser.WaitVisible(ctx, b.page, menuTimeout, downloadMenuItem, downloadText)
	if err != nil {
		return "", b.menuError(err, "download entry")
	}
	if err := entry.Click(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMenuUnavailable, err)
	}

	audio, _, err := browser.WaitVisible(ctx, b.page, menuTimeout, mp3AudioEntry, genericAudioEntry)
	if err != nil {
		return "", b.menuError(err, "audio entry")
	}

	// Arm before the click, the transfer can start before Click returns.
	waiter, err := b.page.ExpectDownload(ctx, config.Milliseconds(b.config.TransferTimeoutMs))
	if err != nil {
		return "", fmt.Errorf("failed to arm download: %w", err)
	}
	defer waiter.Cancel()
	if err := audio.Click(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMenuUnavailable, err)
	}

	if confirm, _, err := browser.WaitVisible(ctx, b.page, config.Milliseconds(b.config.DialogTimeoutMs), downloadAnywayButton); err == nil {
		b.logger.Info().Msg("Accepting 'Download Anyway' dialog.")
		if err := confirm.Click(ctx); err != nil {
			b.logger.Warn().Err(err).Msg("Failed to accept download dialog")
		}
	} else if ctx.Err() != nil {
		return "", ctx.Err()
	}

	download, err := waiter.Wait(ctx)
	if err != nil {
		if errors.Is(err, browser.ErrDownloadTimeout) {
			return "", ErrTransferTimeout
		}
		return "", err
	}

	return b.store(download, targetDir, hint)
}

func (b *Bot) menuError(err error, what string) error {
	if errors.Is(err, browser.ErrNotFound) {
		b.logger.Debug().Str("entry", what).Msg("Menu entry did not appear.")
		return ErrMenuUnavailable
	}
	return err
}

// store moves a staged download into targetDir under a safe, unused name.
// Failures wrap ErrPersist.
func (b *Bot) store(d *browser.Download, targetDir, hint string) (string, error) {
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return "", fmt.Errorf("%w: create download dir: %w", ErrPersist, err)
	}

	name := SanitizeFilename(d.SuggestedFilename)
	if d.SuggestedFilename == "" {
		name = FallbackFilename(hint, b.now())
	}
	dst, err := UniquePath(targetDir, name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := d.SaveAs(dst); err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersist, err)
	}

	b.logger.Info().Str("path", dst).Msg("Song downloaded.")
	return dst, nil
}

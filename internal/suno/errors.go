package suno

import (
	"context"
	"errors"
	"strings"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser"
)

// QuotaMarker prefixes quota errors so callers can pattern-match the message
const QuotaMarker = "TERM_LIMIT_EXCEEDED"

var (
	// ErrAuthTimeout means no logged-in indicator appeared within the login budget
	ErrAuthTimeout = errors.New("login timeout: no authenticated indicator appeared")
	// ErrInputNotFound means no prompt input matched any locator strategy
	ErrInputNotFound = errors.New("could not find the song description input")
	// ErrSubmitControlNotFound means no Create button was found
	ErrSubmitControlNotFound = errors.New("could not find the Create button")
	// ErrQuotaExceeded means the account has no credits left
	ErrQuotaExceeded = errors.New(QuotaMarker + ": You have run out of credits on Suno.")
	// ErrEmptyPrompt rejects blank generation requests
	ErrEmptyPrompt = errors.New("prompt is required")

	// ErrRowNotReady means the row's menu trigger is not usable yet
	ErrRowNotReady = errors.New("row not ready")
	// ErrMenuUnavailable means the overlay menu did not offer a download entry
	ErrMenuUnavailable = errors.New("download menu unavailable")
	// ErrTransferTimeout means the armed download never completed
	ErrTransferTimeout = errors.New("file transfer timed out")
	// ErrPersist means a transferred song could not be written to the target dir
	ErrPersist = errors.New("failed to save downloaded song")
)

// IsQuotaExceeded matches quota errors, including ones flattened to strings by a transport
func IsQuotaExceeded(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrQuotaExceeded) || strings.Contains(err.Error(), QuotaMarker)
}

// isFatal reports whether a row attempt error must stop the loop instead of
// being retried on a later row or tick
func isFatal(ctx context.Context, err error) bool {
	return errors.Is(err, browser.ErrPageClosed) || errors.Is(err, ErrPersist) || ctx.Err() != nil
}

// IsRetryable reports whether err is a transient row-level condition the polling
// loop absorbs
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRowNotReady) ||
		errors.Is(err, ErrMenuUnavailable) ||
		errors.Is(err, ErrTransferTimeout)
}

// outcome names an attempt result for metrics and logs
func outcome(err error) string {
	switch {
	case err == nil:
		return "downloaded"
	case errors.Is(err, ErrRowNotReady):
		return "not_ready"
	case errors.Is(err, ErrMenuUnavailable):
		return "menu_unavailable"
	case errors.Is(err, ErrTransferTimeout):
		return "transfer_timeout"
	case errors.Is(err, ErrPersist):
		return "persist_failed"
	default:
		return "error"
	}
}

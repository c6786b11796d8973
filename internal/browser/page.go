// Package browser abstracts the controlled web page behind small interfaces so the
// automation engine can run against a real Chromium (through rod) or an in-memory
// document in tests.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no element matches a locator
	ErrNotFound = errors.New("element not found")
	// ErrPageClosed is returned by operations on a page whose session was torn down
	ErrPageClosed = errors.New("page closed")
	// ErrDownloadTimeout is returned when an armed download did not complete in time
	ErrDownloadTimeout = errors.New("download did not complete in time")
)

// TextMatch selects how a Locator compares element text
type TextMatch int

const (
	// AnyText applies no text filter
	AnyText TextMatch = iota
	// ExactText requires the normalized text to equal Locator.Text
	ExactText
	// ContainsText requires the normalized text to contain Locator.Text
	ContainsText
)

// Locator describes a document query: a CSS selector optionally narrowed by the
// rendered text of the candidates. With a text filter only the innermost matching
// elements are kept, so a wrapping <div> never shadows the <span> that owns the text.
type Locator struct {
	CSS      string
	Text     string
	Match    TextMatch
	Exclude  string
	CaseFold bool
	// Last makes single-element helpers prefer the last visible match.
	Last bool
}

// CSS returns a locator for a plain CSS selector
func CSS(selector string) Locator {
	return Locator{CSS: selector}
}

// Text returns a whole-document locator on visible text, case-insensitive substring.
func Text(text string) Locator {
	return Locator{Text: text, Match: ContainsText, CaseFold: true}
}

// WithText narrows the locator to candidates whose text matches
func (l Locator) WithText(text string, match TextMatch) Locator {
	l.Text = text
	l.Match = match
	return l
}

// IgnoreCase makes text comparison case-insensitive
func (l Locator) IgnoreCase() Locator {
	l.CaseFold = true
	return l
}

// Excluding rejects candidates whose text contains s
func (l Locator) Excluding(s string) Locator {
	l.Exclude = s
	return l
}

// PreferLast makes FirstVisible and WaitVisible pick the last visible match
func (l Locator) PreferLast() Locator {
	l.Last = true
	return l
}

// Selector returns the CSS part, defaulting to every element
func (l Locator) Selector() string {
	if l.CSS == "" {
		return "*"
	}
	return l.CSS
}

// HasTextFilter reports whether the locator filters on rendered text
func (l Locator) HasTextFilter() bool {
	return l.Match != AnyText || l.Exclude != ""
}

func (l Locator) String() string {
	var b strings.Builder
	b.WriteString(l.Selector())
	switch l.Match {
	case ExactText:
		fmt.Fprintf(&b, " text=%q", l.Text)
	case ContainsText:
		fmt.Fprintf(&b, " text~=%q", l.Text)
	}
	if l.Exclude != "" {
		fmt.Fprintf(&b, " !~%q", l.Exclude)
	}
	if l.CaseFold {
		b.WriteString(" (i)")
	}
	if l.Last {
		b.WriteString(" last")
	}
	return b.String()
}

// MatchesText applies the locator's text filter to already-rendered text.
// Whitespace runs are collapsed before comparison.
func (l Locator) MatchesText(text string) bool {
	text = NormalizeText(text)
	want := l.Text
	exclude := l.Exclude
	if l.CaseFold {
		text = strings.ToLower(text)
		want = strings.ToLower(want)
		exclude = strings.ToLower(exclude)
	}
	if exclude != "" && strings.Contains(text, exclude) {
		return false
	}
	switch l.Match {
	case ExactText:
		return text == want
	case ContainsText:
		return strings.Contains(text, want)
	default:
		return true
	}
}

// NormalizeText collapses whitespace runs and trims
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Querier runs locators against a document or a subtree
type Querier interface {
	Query(ctx context.Context, loc Locator) ([]Element, error)
}

// Element is one node of the controlled page
type Element interface {
	Querier
	Visible(ctx context.Context) (bool, error)
	Click(ctx context.Context) error
	// ForceClick dispatches a click from script, ignoring disabled state and overlap.
	ForceClick(ctx context.Context) error
	Focus(ctx context.Context) error
	Text(ctx context.Context) (string, error)
	// HTML returns the outer HTML of the element.
	HTML(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, bool, error)
	TagName(ctx context.Context) (string, error)
	// Editable reports whether the element accepts typed text.
	Editable(ctx context.Context) (bool, error)
	// Value returns the form value, or the text content for non-form elements.
	Value(ctx context.Context) (string, error)
	// Fill replaces the content programmatically.
	Fill(ctx context.Context, text string) error
	// Closest returns the nearest ancestor matching css, or ErrNotFound.
	Closest(ctx context.Context, css string) (Element, error)
	// Parent returns the parent element, or ErrNotFound at the root.
	Parent(ctx context.Context) (Element, error)
}

// Page is the controlled browser tab
type Page interface {
	Querier
	Navigate(ctx context.Context, url string) error
	URL(ctx context.Context) (string, error)
	// HTML returns the serialized document.
	HTML(ctx context.Context) (string, error)
	// TypeText emits key events for text into the focused element, pausing perKey between keys.
	TypeText(ctx context.Context, text string, perKey time.Duration) error
	// ClearFocused selects everything in the focused element and deletes it.
	ClearFocused(ctx context.Context) error
	// ClickAt clicks a viewport coordinate.
	ClickAt(ctx context.Context, x, y float64) error
	// ExpectDownload arms a listener for the next file transfer. Arm before the click
	// that starts the transfer.
	ExpectDownload(ctx context.Context, timeout time.Duration) (DownloadWaiter, error)
	Closed() bool
}

// DownloadWaiter resolves an armed download
type DownloadWaiter interface {
	// Wait blocks until the transfer completes, ErrDownloadTimeout otherwise.
	Wait(ctx context.Context) (*Download, error)
	// Cancel releases the listener. It is safe to call more than once and after Wait.
	Cancel()
}

// Download is a completed transfer sitting in a staging location
type Download struct {
	GUID              string
	URL               string
	SuggestedFilename string
	// Path is the staged file; SaveAs moves it.
	Path string
}

// Session is one launched, controllable browser with its page
type Session interface {
	Page() Page
	Headless() bool
	StartedAt() time.Time
	// SaveState persists authentication state to the session's state file.
	SaveState(ctx context.Context) error
	// Close persists state and releases the browser.
	Close(ctx context.Context) error
}

// LaunchOptions parameterize one launch
type LaunchOptions struct {
	Headless  bool
	StatePath string
}

// Launcher starts sessions
type Launcher interface {
	Launch(ctx context.Context, opts LaunchOptions) (Session, error)
}

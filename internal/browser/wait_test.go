package browser_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser/browsertest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const menuDoc = `<html><body>
<div id="rows">
  <button hidden>Create</button>
  <button id="create">Create</button>
</div>
<div role="menu">
  <div role="menuitem" id="first"><span>MP3 Audio</span></div>
  <div role="menuitem" id="second"><span>MP3 Audio</span></div>
  <div role="menuitem" style="display: none"><span>WAV Audio</span></div>
</div>
</body></html>`

func TestFirstVisible_SkipsHiddenAndHonoursLast(t *testing.T) {
	ctx := context.Background()
	page := browsertest.NewPage(t, menuDoc)

	el, err := browser.FirstVisible(ctx, page, browser.CSS("button").WithText("create", browser.ExactText).IgnoreCase())
	require.NoError(t, err)
	id, _, _ := el.Attribute(ctx, "id")
	assert.Equal(t, "create", id)

	last, err := browser.FirstVisible(ctx, page, browser.CSS(`[role="menuitem"]`).WithText("MP3 Audio", browser.ContainsText).PreferLast())
	require.NoError(t, err)
	id, _, _ = last.Attribute(ctx, "id")
	assert.Equal(t, "second", id)

	_, err = browser.FirstVisible(ctx, page, browser.Text("WAV Audio"))
	assert.ErrorIs(t, err, browser.ErrNotFound)
}

func TestAnyPresent_IgnoresVisibility(t *testing.T) {
	ctx := context.Background()
	page := browsertest.NewPage(t, menuDoc)

	assert.False(t, browser.AnyVisible(ctx, page, browser.Text("WAV Audio")))
	assert.True(t, browser.AnyPresent(ctx, page, browser.CSS("#missing"), browser.Text("WAV Audio")))
	assert.False(t, browser.AnyPresent(ctx, page, browser.CSS("#missing")))
}

func TestQuery_TextFilterKeepsInnermost(t *testing.T) {
	page := browsertest.NewPage(t, menuDoc)

	elements, err := page.Query(context.Background(), browser.Text("MP3 Audio"))
	require.NoError(t, err)
	require.Len(t, elements, 2)
	for _, el := range elements {
		tag, _ := el.TagName(context.Background())
		assert.Equal(t, "span", tag)
	}
}

func TestWaitVisible_AppearsLate(t *testing.T) {
	page := browsertest.NewPage(t, `<html><body><div id="portal"></div></body></html>`)
	go func() {
		time.Sleep(20 * time.Millisecond)
		page.Mutate(func(doc *goquery.Document) {
			doc.Find("#portal").AppendHtml(`<div role="menuitem">Download</div>`)
		})
	}()

	el, idx, err := browser.WaitVisible(context.Background(), page, time.Second,
		browser.CSS(`[role="menuitem"]`).WithText("Download", browser.ExactText),
		browser.Text("Download"),
	)

	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.NotNil(t, el)
}

func TestWaitVisible_TimesOut(t *testing.T) {
	page := browsertest.NewPage(t, `<html><body></body></html>`)

	start := time.Now()
	_, idx, err := browser.WaitVisible(context.Background(), page, 30*time.Millisecond, browser.Text("Download"))

	assert.ErrorIs(t, err, browser.ErrNotFound)
	assert.Equal(t, -1, idx)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitVisible_ContextCancelled(t *testing.T) {
	page := browsertest.NewPage(t, `<html><body></body></html>`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := browser.WaitVisible(ctx, page, time.Second, browser.Text("Download"))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleep(t *testing.T) {
	assert.NoError(t, browser.Sleep(context.Background(), time.Millisecond))
	assert.NoError(t, browser.Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, browser.Sleep(ctx, time.Hour), context.Canceled)
}

func TestTryEach(t *testing.T) {
	ctx := context.Background()
	page := browsertest.NewPage(t, `<html><body><textarea id="prompt"></textarea></body></html>`)
	boom := errors.New("detached")

	el, name, err := browser.TryEach(ctx, zerolog.Nop(), "prompt input",
		browser.VisibleStrategy("placeholder", page, browser.CSS(`[placeholder*="Song Description"]`), nil),
		browser.Strategy{Name: "broken", Find: func(context.Context) (browser.Element, error) { return nil, boom }},
		browser.VisibleStrategy("textarea", page, browser.CSS("textarea"), nil),
	)

	require.NoError(t, err)
	assert.Equal(t, "textarea", name)
	id, _, _ := el.Attribute(ctx, "id")
	assert.Equal(t, "prompt", id)
}

func TestTryEach_NoMatch(t *testing.T) {
	page := browsertest.NewPage(t, `<html><body><button aria-label="Song Description">x</button></body></html>`)
	notButton := func(ctx context.Context, el browser.Element) (bool, error) {
		tag, err := el.TagName(ctx)
		return tag != "button", err
	}

	_, _, err := browser.TryEach(context.Background(), zerolog.Nop(), "prompt input",
		browser.VisibleStrategy("aria-label", page, browser.CSS(`[aria-label="Song Description"]`), notButton),
	)

	assert.ErrorIs(t, err, browser.ErrNotFound)
}

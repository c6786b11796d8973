package browser

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/common/errorwrapper"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

type rodPage struct {
	page              *rod.Page
	browser           *rod.Browser
	stagingDir        string
	navigationTimeout time.Duration
	actionTimeout     time.Duration
	closed            atomic.Bool
}

func (p *rodPage) bounded(ctx context.Context, d time.Duration) (*rod.Page, context.CancelFunc) {
	c, cancel := context.WithTimeout(ctx, d)
	return p.page.Context(c), cancel
}

func (p *rodPage) Closed() bool {
	return p.closed.Load()
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	if p.Closed() {
		return ErrPageClosed
	}
	page, cancel := p.bounded(ctx, p.navigationTimeout)
	defer cancel()
	if err := page.Navigate(url); err != nil {
		return errorwrapper.NewBrowserError("navigate", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return errorwrapper.NewBrowserError("wait load", url, err)
	}
	return nil
}

func (p *rodPage) URL(ctx context.Context) (string, error) {
	if p.Closed() {
		return "", ErrPageClosed
	}
	page, cancel := p.bounded(ctx, p.actionTimeout)
	defer cancel()
	info, err := page.Info()
	if err != nil {
		return "", errorwrapper.NewBrowserError("read url", "", err)
	}
	return info.URL, nil
}

func (p *rodPage) HTML(ctx context.Context) (string, error) {
	if p.Closed() {
		return "", ErrPageClosed
	}
	page, cancel := p.bounded(ctx, p.actionTimeout)
	defer cancel()
	return page.HTML()
}

func (p *rodPage) Query(ctx context.Context, loc Locator) ([]Element, error) {
	if p.Closed() {
		return nil, ErrPageClosed
	}
	page, cancel := p.bounded(ctx, p.actionTimeout)
	defer cancel()
	list, err := page.ElementsByJS(locatorArgs(loc))
	if err != nil {
		return nil, errorwrapper.NewBrowserError("query", loc.String(), err)
	}
	return wrapElements(list, p.actionTimeout), nil
}

// TypeText sends real key events for printable ASCII and inserts anything else
// as text, since rod only knows a US keyboard layout.
func (p *rodPage) TypeText(ctx context.Context, text string, perKey time.Duration) error {
	if p.Closed() {
		return ErrPageClosed
	}
	for _, r := range text {
		if err := p.typeRune(ctx, r); err != nil {
			return errorwrapper.NewBrowserError("type", "", err)
		}
		if err := Sleep(ctx, perKey); err != nil {
			return err
		}
	}
	return nil
}

func (p *rodPage) typeRune(ctx context.Context, r rune) error {
	page, cancel := p.bounded(ctx, p.actionTimeout)
	defer cancel()
	if r >= 32 && r <= 126 {
		return page.Keyboard.Type(input.Key(r))
	}
	return page.InsertText(string(r))
}

func (p *rodPage) ClearFocused(ctx context.Context) error {
	if p.Closed() {
		return ErrPageClosed
	}
	modifier := input.ControlLeft
	if runtime.GOOS == "darwin" {
		modifier = input.MetaLeft
	}
	page, cancel := p.bounded(ctx, p.actionTimeout)
	defer cancel()
	if err := page.KeyActions().Press(modifier).Type(input.KeyA).Do(); err != nil {
		return errorwrapper.NewBrowserError("select all", "", err)
	}
	if err := page.Keyboard.Type(input.Backspace); err != nil {
		return errorwrapper.NewBrowserError("backspace", "", err)
	}
	return nil
}

func (p *rodPage) ClickAt(ctx context.Context, x, y float64) error {
	if p.Closed() {
		return ErrPageClosed
	}
	page, cancel := p.bounded(ctx, p.actionTimeout)
	defer cancel()
	if err := page.Mouse.MoveTo(proto.Point{X: x, Y: y}); err != nil {
		return errorwrapper.NewBrowserError("mouse move", "", err)
	}
	if err := page.Mouse.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return errorwrapper.NewBrowserError("mouse click", "", err)
	}
	return nil
}

func (p *rodPage) ExpectDownload(ctx context.Context, timeout time.Duration) (DownloadWaiter, error) {
	if p.Closed() {
		return nil, ErrPageClosed
	}
	if err := os.MkdirAll(p.stagingDir, 0755); err != nil {
		return nil, errorwrapper.WrapErrorf(err, "failed to create download staging dir %s", p.stagingDir)
	}

	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	wait := p.browser.Context(c).WaitDownload(p.stagingDir)
	return &rodDownloadWaiter{ctx: c, cancel: cancel, wait: wait, dir: p.stagingDir}, nil
}

type rodDownloadWaiter struct {
	ctx    context.Context
	cancel context.CancelFunc
	wait   func() *proto.PageDownloadWillBegin
	dir    string
	once   sync.Once
}

// listen drains the rod listener exactly once. Draining also restores the
// browser's previous download behavior.
func (w *rodDownloadWaiter) listen() (info *proto.PageDownloadWillBegin) {
	w.once.Do(func() {
		info = w.wait()
	})
	return info
}

func (w *rodDownloadWaiter) Cancel() {
	w.cancel()
	w.listen()
}

func (w *rodDownloadWaiter) Wait(ctx context.Context) (*Download, error) {
	defer w.cancel()

	stop := context.AfterFunc(ctx, w.cancel)
	defer stop()

	info := w.listen()
	// The listener also returns when its context expires, possibly mid-transfer.
	if w.ctx.Err() != nil || info == nil {
		if info != nil {
			_ = os.Remove(filepath.Join(w.dir, info.GUID))
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrDownloadTimeout
	}

	path := filepath.Join(w.dir, info.GUID)
	if _, err := os.Stat(path); err != nil {
		return nil, ErrDownloadTimeout
	}
	return &Download{
		GUID:              info.GUID,
		URL:               info.URL,
		SuggestedFilename: info.SuggestedFilename,
		Path:              path,
	}, nil
}

// Package browsertest provides an in-memory browser.Page backed by a goquery
// document. Click handlers registered by CSS selector stand in for the remote
// application's scripts, so tests can model menus that appear late, rows that
// change, and downloads that start on a click.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser"
	"golang.org/x/net/html"
)

// ErrDetached is returned for interactions with nodes no longer in the document
var ErrDetached = errors.New("element is detached from the document")

// Click is passed to handlers while the page lock is held.
// Handlers must use its methods rather than the Page's.
type Click struct {
	page   *Page
	Doc    *goquery.Document
	Target *goquery.Selection
}

// Download starts a transfer to the oldest armed listener. It reports false when
// nothing was armed, in which case the transfer is lost.
func (c *Click) Download(suggestedName string, data []byte) bool {
	return c.page.deliverLocked(suggestedName, data)
}

// SetHTML replaces the document
func (c *Click) SetHTML(doc string) {
	c.page.setHTMLLocked(doc)
	c.Doc = c.page.doc
}

// Remove deletes every element matching css
func (c *Click) Remove(css string) {
	c.Doc.Find(css).Remove()
}

// Append parses fragment and appends it to the first element matching css
func (c *Click) Append(css, fragment string) {
	c.Doc.Find(css).First().AppendHtml(fragment)
}

type clickHandler struct {
	selector string
	fn       func(c *Click)
}

// Page is a fake browser.Page
type Page struct {
	mu sync.Mutex

	doc        *goquery.Document
	url        string
	closed     bool
	focused    *html.Node
	values     map[*html.Node]string
	stagingDir string

	handlers      []clickHandler
	inertHandlers []func(c *Click)
	onNavigate    func(c *Click, url string)
	armed         []*downloadWaiter

	// DropTypedText discards key events, like a framework ignoring synthetic input.
	DropTypedText bool
	// NavigateErr is returned by every Navigate call when set.
	NavigateErr error

	clicks      []string
	navigations []string
	typed       strings.Builder
	armedTotal  int
	guid        int
}

var _ browser.Page = (*Page)(nil)

// NewPage returns a page showing doc. Staged downloads live under t.TempDir().
func NewPage(t testing.TB, doc string) *Page {
	t.Helper()
	p := &Page{
		url:        "about:blank",
		values:     make(map[*html.Node]string),
		stagingDir: t.TempDir(),
	}
	p.setHTMLLocked(doc)
	return p
}

func (p *Page) setHTMLLocked(doc string) {
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		panic(fmt.Sprintf("browsertest: invalid html: %v", err))
	}
	p.doc = parsed
	p.focused = nil
	p.values = make(map[*html.Node]string)
}

// SetHTML replaces the document
func (p *Page) SetHTML(doc string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setHTMLLocked(doc)
}

// SetURL changes the reported location without navigating
func (p *Page) SetURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
}

// Mutate runs fn against the document under the page lock
func (p *Page) Mutate(fn func(doc *goquery.Document)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.doc)
}

// OnClick registers fn for clicks on elements matching css
func (p *Page) OnClick(css string, fn func(c *Click)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, clickHandler{selector: css, fn: fn})
}

// OnInertClick registers fn for clicks on empty page coordinates
func (p *Page) OnInertClick(fn func(c *Click)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inertHandlers = append(p.inertHandlers, fn)
}

// OnNavigate registers fn to run after every navigation
func (p *Page) OnNavigate(fn func(c *Click, url string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onNavigate = fn
}

// EmitDownload delivers a transfer outside of any click
func (p *Page) EmitDownload(suggestedName string, data []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deliverLocked(suggestedName, data)
}

// Close marks the page closed
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// Find runs a CSS query for assertions
func (p *Page) Find(css string) *goquery.Selection {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Find(css)
}

// Clicks lists a description of every element click and inert click, in order
func (p *Page) Clicks() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.clicks...)
}

// Navigations lists every URL navigated to
func (p *Page) Navigations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navigations...)
}

// Typed returns every key typed so far
func (p *Page) Typed() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.typed.String()
}

// ArmedDownloads counts ExpectDownload calls
func (p *Page) ArmedDownloads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.armedTotal
}

// PendingDownloads counts waiters still listening for a transfer
func (p *Page) PendingDownloads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.armed)
}

func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return browser.ErrPageClosed
	}
	p.navigations = append(p.navigations, url)
	if p.NavigateErr != nil {
		return p.NavigateErr
	}
	p.url = url
	if p.onNavigate != nil {
		p.onNavigate(&Click{page: p, Doc: p.doc}, url)
	}
	return nil
}

func (p *Page) URL(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return "", browser.ErrPageClosed
	}
	return p.url, nil
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return "", browser.ErrPageClosed
	}
	return p.doc.Html()
}

func (p *Page) Query(ctx context.Context, loc browser.Locator) ([]browser.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, browser.ErrPageClosed
	}
	return p.queryLocked(p.doc.Selection, loc), nil
}

func (p *Page) queryLocked(root *goquery.Selection, loc browser.Locator) []browser.Element {
	candidates := root.Find(loc.Selector())

	var nodes []*html.Node
	candidates.Each(func(_ int, s *goquery.Selection) {
		if loc.HasTextFilter() && !loc.MatchesText(s.Text()) {
			return
		}
		nodes = append(nodes, s.Get(0))
	})

	if loc.HasTextFilter() {
		nodes = innermost(nodes)
	}

	out := make([]browser.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &Element{page: p, node: n})
	}
	return out
}

func innermost(nodes []*html.Node) []*html.Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		shadowed := false
		for _, o := range nodes {
			if o != n && contains(n, o) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			out = append(out, n)
		}
	}
	return out
}

func contains(ancestor, n *html.Node) bool {
	for c := n.Parent; c != nil; c = c.Parent {
		if c == ancestor {
			return true
		}
	}
	return false
}

func (p *Page) TypeText(ctx context.Context, text string, perKey time.Duration) error {
	for _, r := range text {
		if err := p.typeRune(r); err != nil {
			return err
		}
		if err := browser.Sleep(ctx, perKey); err != nil {
			return err
		}
	}
	return nil
}

func (p *Page) typeRune(r rune) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return browser.ErrPageClosed
	}
	p.typed.WriteRune(r)
	if p.DropTypedText || p.focused == nil {
		return nil
	}
	p.setValueLocked(p.focused, p.valueLocked(p.focused)+string(r))
	return nil
}

func (p *Page) ClearFocused(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return browser.ErrPageClosed
	}
	if p.focused != nil {
		p.setValueLocked(p.focused, "")
	}
	return nil
}

func (p *Page) ClickAt(ctx context.Context, x, y float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return browser.ErrPageClosed
	}
	p.clicks = append(p.clicks, fmt.Sprintf("point(%g,%g)", x, y))
	p.focused = nil
	for _, fn := range p.inertHandlers {
		fn(&Click{page: p, Doc: p.doc})
	}
	return nil
}

func (p *Page) ExpectDownload(ctx context.Context, timeout time.Duration) (browser.DownloadWaiter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, browser.ErrPageClosed
	}
	w := &downloadWaiter{page: p, timeout: timeout, ch: make(chan *browser.Download, 1)}
	p.armed = append(p.armed, w)
	p.armedTotal++
	return w, nil
}

func (p *Page) deliverLocked(suggestedName string, data []byte) bool {
	if len(p.armed) == 0 {
		return false
	}
	w := p.armed[0]
	p.armed = p.armed[1:]

	p.guid++
	guid := fmt.Sprintf("guid-%d", p.guid)
	path := filepath.Join(p.stagingDir, guid)
	if err := os.WriteFile(path, data, 0644); err != nil {
		panic(fmt.Sprintf("browsertest: staging download: %v", err))
	}
	w.ch <- &browser.Download{GUID: guid, SuggestedFilename: suggestedName, Path: path}
	return true
}

func (p *Page) disarm(w *downloadWaiter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, a := range p.armed {
		if a == w {
			p.armed = append(p.armed[:i], p.armed[i+1:]...)
			return
		}
	}
}

type downloadWaiter struct {
	page    *Page
	timeout time.Duration
	ch      chan *browser.Download
}

func (w *downloadWaiter) Wait(ctx context.Context) (*browser.Download, error) {
	timer := time.NewTimer(w.timeout)
	defer timer.Stop()
	select {
	case d := <-w.ch:
		return d, nil
	case <-timer.C:
	case <-ctx.Done():
	}

	w.page.disarm(w)
	// A delivery may have raced the timer.
	select {
	case d := <-w.ch:
		return d, nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, browser.ErrDownloadTimeout
}

func (w *downloadWaiter) Cancel() {
	w.page.disarm(w)
}

func (p *Page) attachedLocked(n *html.Node) bool {
	root := n
	for root.Parent != nil {
		root = root.Parent
	}
	return root == p.doc.Get(0)
}

func (p *Page) visibleLocked(n *html.Node) bool {
	if !p.attachedLocked(n) {
		return false
	}
	for c := n; c != nil; c = c.Parent {
		if c.Type != html.ElementNode {
			continue
		}
		for _, a := range c.Attr {
			if a.Key == "hidden" {
				return false
			}
			if a.Key == "style" && strings.Contains(strings.ReplaceAll(a.Val, " ", ""), "display:none") {
				return false
			}
		}
	}
	return true
}

func (p *Page) editableLocked(n *html.Node) bool {
	s := goquery.NewDocumentFromNode(n).Selection
	if _, readonly := s.Attr("readonly"); readonly {
		return false
	}
	if _, disabled := s.Attr("disabled"); disabled {
		return false
	}
	switch n.Data {
	case "textarea":
		return true
	case "input":
		t, _ := s.Attr("type")
		switch t {
		case "button", "submit", "checkbox", "radio":
			return false
		}
		return true
	}
	for c := n; c != nil; c = c.Parent {
		if c.Type != html.ElementNode {
			continue
		}
		for _, a := range c.Attr {
			if a.Key == "contenteditable" {
				return a.Val == "" || a.Val == "true"
			}
		}
	}
	return false
}

func (p *Page) valueLocked(n *html.Node) string {
	if v, ok := p.values[n]; ok {
		return v
	}
	s := goquery.NewDocumentFromNode(n).Selection
	if n.Data == "input" {
		v, _ := s.Attr("value")
		return v
	}
	return s.Text()
}

func (p *Page) setValueLocked(n *html.Node, v string) {
	if n.Data == "input" || n.Data == "textarea" {
		p.values[n] = v
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if v != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: v})
	}
}

func (p *Page) clickLocked(n *html.Node, force bool) error {
	if p.closed {
		return browser.ErrPageClosed
	}
	if !p.attachedLocked(n) {
		return ErrDetached
	}
	target := goquery.NewDocumentFromNode(n).Selection
	if !force {
		if !p.visibleLocked(n) {
			return fmt.Errorf("element <%s> is not visible", n.Data)
		}
		if _, disabled := target.Attr("disabled"); disabled {
			return fmt.Errorf("element <%s> is disabled", n.Data)
		}
	}

	p.clicks = append(p.clicks, describe(n))
	if p.editableLocked(n) {
		p.focused = n
	}

	// Match against the live document so selectors with ancestors work.
	live := p.doc.FindNodes(n)
	for _, h := range append([]clickHandler(nil), p.handlers...) {
		if live.Is(h.selector) {
			h.fn(&Click{page: p, Doc: p.doc, Target: live})
		}
	}
	return nil
}

func describe(n *html.Node) string {
	var b strings.Builder
	b.WriteString(n.Data)
	for _, a := range n.Attr {
		switch a.Key {
		case "id":
			b.WriteString("#" + a.Val)
		case "data-testid", "aria-label", "data-row":
			fmt.Fprintf(&b, "[%s=%q]", a.Key, a.Val)
		}
	}
	text := browser.NormalizeText(goquery.NewDocumentFromNode(n).Text())
	if text != "" {
		fmt.Fprintf(&b, "(%s)", text)
	}
	return b.String()
}

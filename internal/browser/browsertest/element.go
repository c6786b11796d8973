package browsertest

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser"
	"golang.org/x/net/html"
)

// Element is a fake browser.Element bound to one parsed node
type Element struct {
	page *Page
	node *html.Node
}

var _ browser.Element = (*Element)(nil)

// Node exposes the underlying node for assertions
func (e *Element) Node() *html.Node {
	return e.node
}

func (e *Element) sel() *goquery.Selection {
	return goquery.NewDocumentFromNode(e.node).Selection
}

func (e *Element) Query(ctx context.Context, loc browser.Locator) ([]browser.Element, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if e.page.closed {
		return nil, browser.ErrPageClosed
	}
	return e.page.queryLocked(e.sel(), loc), nil
}

func (e *Element) Visible(ctx context.Context) (bool, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if e.page.closed {
		return false, browser.ErrPageClosed
	}
	return e.page.visibleLocked(e.node), nil
}

func (e *Element) Click(ctx context.Context) error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	return e.page.clickLocked(e.node, false)
}

func (e *Element) ForceClick(ctx context.Context) error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	return e.page.clickLocked(e.node, true)
}

func (e *Element) Focus(ctx context.Context) error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if !e.page.attachedLocked(e.node) {
		return ErrDetached
	}
	e.page.focused = e.node
	return nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	return e.sel().Text(), nil
}

func (e *Element) HTML(ctx context.Context) (string, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	return goquery.OuterHtml(e.sel())
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	v, ok := e.sel().Attr(name)
	return v, ok, nil
}

func (e *Element) TagName(ctx context.Context) (string, error) {
	return strings.ToLower(e.node.Data), nil
}

func (e *Element) Editable(ctx context.Context) (bool, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	return e.page.editableLocked(e.node), nil
}

func (e *Element) Value(ctx context.Context) (string, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	return e.page.valueLocked(e.node), nil
}

func (e *Element) Fill(ctx context.Context, text string) error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if !e.page.attachedLocked(e.node) {
		return ErrDetached
	}
	e.page.setValueLocked(e.node, text)
	return nil
}

func (e *Element) Closest(ctx context.Context, css string) (browser.Element, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	parents := e.sel().ParentsFiltered(css)
	if parents.Length() == 0 {
		return nil, browser.ErrNotFound
	}
	return &Element{page: e.page, node: parents.Get(0)}, nil
}

func (e *Element) Parent(ctx context.Context) (browser.Element, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	parent := e.node.Parent
	if parent == nil || parent.Type != html.ElementNode {
		return nil, browser.ErrNotFound
	}
	return &Element{page: e.page, node: parent}, nil
}

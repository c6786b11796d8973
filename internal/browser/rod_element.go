package browser

import (
	"context"
	"time"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/common/errorwrapper"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// queryJS mirrors Locator.MatchesText in the page. It runs with `this` bound to the
// element being searched, or to window for document-wide queries.
const queryJS = `function (css, text, mode, fold, exclude) {
	const root = (this && this.nodeType === 1) ? this : document;
	const all = Array.from(root.querySelectorAll(css));
	if (mode === 0 && !exclude) return all;
	const norm = (s) => (s || '').replace(/\s+/g, ' ').trim();
	const cmp = (s) => fold ? s.toLowerCase() : s;
	const want = cmp(text);
	const skip = cmp(exclude || '');
	const hits = all.filter((el) => {
		const t = cmp(norm(el.innerText !== undefined ? el.innerText : el.textContent));
		if (skip && t.includes(skip)) return false;
		if (mode === 1) return t === want;
		if (mode === 2) return t.includes(want);
		return true;
	});
	return hits.filter((el) => !hits.some((o) => o !== el && el.contains(o)));
}`

func locatorArgs(loc Locator) *rod.EvalOptions {
	return rod.Eval(queryJS, loc.Selector(), loc.Text, int(loc.Match), loc.CaseFold, loc.Exclude)
}

type rodElement struct {
	el            *rod.Element
	actionTimeout time.Duration
}

func wrapElements(list rod.Elements, actionTimeout time.Duration) []Element {
	out := make([]Element, 0, len(list))
	for _, el := range list {
		out = append(out, &rodElement{el: el, actionTimeout: actionTimeout})
	}
	return out
}

func (e *rodElement) bounded(ctx context.Context) (*rod.Element, context.CancelFunc) {
	c, cancel := context.WithTimeout(ctx, e.actionTimeout)
	return e.el.Context(c), cancel
}

func (e *rodElement) Query(ctx context.Context, loc Locator) ([]Element, error) {
	el, cancel := e.bounded(ctx)
	defer cancel()
	list, err := el.ElementsByJS(locatorArgs(loc))
	if err != nil {
		return nil, errorwrapper.NewBrowserError("query", loc.String(), err)
	}
	return wrapElements(list, e.actionTimeout), nil
}

func (e *rodElement) Visible(ctx context.Context) (bool, error) {
	el, cancel := e.bounded(ctx)
	defer cancel()
	return el.Visible()
}

func (e *rodElement) Click(ctx context.Context) error {
	el, cancel := e.bounded(ctx)
	defer cancel()
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return errorwrapper.NewBrowserError("click", "", err)
	}
	return nil
}

func (e *rodElement) ForceClick(ctx context.Context) error {
	el, cancel := e.bounded(ctx)
	defer cancel()
	if _, err := el.Eval(`function () { this.click() }`); err != nil {
		return errorwrapper.NewBrowserError("force click", "", err)
	}
	return nil
}

func (e *rodElement) Focus(ctx context.Context) error {
	el, cancel := e.bounded(ctx)
	defer cancel()
	return el.Focus()
}

func (e *rodElement) Text(ctx context.Context) (string, error) {
	el, cancel := e.bounded(ctx)
	defer cancel()
	return el.Text()
}

func (e *rodElement) HTML(ctx context.Context) (string, error) {
	el, cancel := e.bounded(ctx)
	defer cancel()
	return el.HTML()
}

func (e *rodElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	el, cancel := e.bounded(ctx)
	defer cancel()
	v, err := el.Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *rodElement) TagName(ctx context.Context) (string, error) {
	el, cancel := e.bounded(ctx)
	defer cancel()
	res, err := el.Eval(`function () { return this.tagName.toLowerCase() }`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (e *rodElement) Editable(ctx context.Context) (bool, error) {
	el, cancel := e.bounded(ctx)
	defer cancel()
	res, err := el.Eval(`function () {
		const tag = this.tagName.toLowerCase();
		if (tag === 'textarea') return !this.readOnly && !this.disabled;
		if (tag === 'input') return !this.readOnly && !this.disabled && !['button','submit','checkbox','radio'].includes(this.type);
		return this.isContentEditable === true;
	}`)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

func (e *rodElement) Value(ctx context.Context) (string, error) {
	el, cancel := e.bounded(ctx)
	defer cancel()
	res, err := el.Eval(`function () {
		return (typeof this.value === 'string') ? this.value : (this.innerText || this.textContent || '');
	}`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (e *rodElement) Fill(ctx context.Context, text string) error {
	el, cancel := e.bounded(ctx)
	defer cancel()
	if err := el.SelectAllText(); err != nil {
		return errorwrapper.NewBrowserError("select text", "", err)
	}
	if err := el.Input(text); err != nil {
		return errorwrapper.NewBrowserError("input", "", err)
	}
	return nil
}

func (e *rodElement) Closest(ctx context.Context, css string) (Element, error) {
	el, cancel := e.bounded(ctx)
	defer cancel()
	parents, err := el.Parents(css)
	if err != nil {
		return nil, err
	}
	if len(parents) == 0 {
		return nil, ErrNotFound
	}
	return &rodElement{el: parents.First(), actionTimeout: e.actionTimeout}, nil
}

func (e *rodElement) Parent(ctx context.Context) (Element, error) {
	el, cancel := e.bounded(ctx)
	defer cancel()
	parent, err := el.Parent()
	if err != nil {
		return nil, ErrNotFound
	}
	return &rodElement{el: parent, actionTimeout: e.actionTimeout}, nil
}

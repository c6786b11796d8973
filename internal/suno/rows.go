package suno

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser"
)

// SongIDFromHref extracts the song identifier, the last path segment of a song link
func SongIDFromHref(href string) string {
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	href = strings.TrimRight(href, "/")
	if i := strings.LastIndex(href, "/"); i >= 0 {
		href = href[i+1:]
	}
	if id, err := url.PathUnescape(href); err == nil {
		return id
	}
	return href
}

// ParseSongIDs returns the ids of the first limit song links in document order.
// A limit of zero or less means no limit.
func ParseSongIDs(doc string, limit int) ([]string, error) {
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, err
	}

	var ids []string
	parsed.Find(songLinkSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if limit > 0 && len(ids) >= limit {
			return false
		}
		href, _ := s.Attr("href")
		if id := SongIDFromHref(href); id != "" {
			ids = append(ids, id)
		}
		return true
	})
	return ids, nil
}

// IsMenuTriggerHTML reports whether a button's outer HTML looks like the row's
// icon-only menu button
func IsMenuTriggerHTML(outer string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(outer))
	if err != nil {
		return false
	}
	button := doc.Find("button").First()
	if button.Length() == 0 {
		return false
	}
	return strings.TrimSpace(button.Text()) == "" && button.Find("svg").Length() > 0
}

// songRow is one song link found in the list
type songRow struct {
	id   string
	link browser.Element
}

// listRows returns the song rows in document order. A top of zero or less lists all.
func (b *Bot) listRows(ctx context.Context, top int) ([]songRow, error) {
	links, err := b.page.Query(ctx, browser.CSS(songLinkSelector))
	if err != nil {
		return nil, err
	}
	if top > 0 && len(links) > top {
		links = links[:top]
	}

	rows := make([]songRow, 0, len(links))
	for _, link := range links {
		href, ok, err := link.Attribute(ctx, "href")
		if err != nil || !ok {
			continue
		}
		if id := SongIDFromHref(href); id != "" {
			rows = append(rows, songRow{id: id, link: link})
		}
	}
	return rows, nil
}

// rowContainer finds the element enclosing a song link and its controls
func rowContainer(ctx context.Context, link browser.Element) (browser.Element, error) {
	container, err := link.Closest(ctx, rowContainerSelector)
	if err == nil {
		return container, nil
	}
	if !errors.Is(err, browser.ErrNotFound) {
		return nil, err
	}

	container = link
	for i := 0; i < rowAncestorFallback; i++ {
		parent, err := container.Parent(ctx)
		if err != nil {
			break
		}
		container = parent
	}
	return container, nil
}

// findMenuTrigger returns the last icon-only button of the row, or ErrNotFound
func findMenuTrigger(ctx context.Context, link browser.Element) (browser.Element, error) {
	container, err := rowContainer(ctx, link)
	if err != nil {
		return nil, err
	}
	buttons, err := container.Query(ctx, browser.CSS("button"))
	if err != nil {
		return nil, err
	}
	for i := len(buttons) - 1; i >= 0; i-- {
		outer, err := buttons[i].HTML(ctx)
		if err != nil {
			continue
		}
		if IsMenuTriggerHTML(outer) {
			return buttons[i], nil
		}
	}
	return nil, browser.ErrNotFound
}

// Package sunotest models the Suno create page on top of browsertest: a prompt
// form, a song list whose rows open overlay menus, and downloads started from
// the MP3 entry.
package sunotest

import (
	"fmt"
	"html"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser/browsertest"
)

// CreatePageDoc is the logged-in create page with an empty song list
const CreatePageDoc = `<html><body>
<div id="form">
  <textarea placeholder="Song Description"></textarea>
  <button aria-label="Enable instrumental mode">Instrumental</button>
  <button id="create">Create</button>
</div>
<div id="list"></div>
<div id="portal"></div>
</body></html>`

// Row is one song in the list
type Row struct {
	ID    string
	Title string
}

// RowHTML renders a row: a cover link, a title link, a play button and the
// icon-only menu trigger
func RowHTML(r Row) string {
	return fmt.Sprintf(`<div class="clip-row">`+
		`<a href="/song/%[1]s"><img alt=""></a>`+
		`<a href="/song/%[1]s?sh=1">%[2]s</a>`+
		`<button aria-label="Play" data-row="%[1]s">Play</button>`+
		`<button class="more" data-row="%[1]s"><svg viewBox="0 0 24 24"></svg></button>`+
		`</div>`, r.ID, html.EscapeString(r.Title))
}

// Site models the create page: rows with overlay menus, a Create button that
// publishes NewRows, and downloads started from the MP3 entry. Its fields are read
// by click handlers under the page lock, so set them before driving the bot.
type Site struct {
	Page *browsertest.Page

	// NewRows are published at the top of the list when Create is clicked.
	NewRows []Row
	// MenuFailures counts trigger clicks per row id that open nothing.
	MenuFailures map[string]int
	// NoAudio keeps the audio entries out of the menu.
	NoAudio bool
	// NoDownload makes the MP3 entry start no transfer.
	NoDownload bool
	// ConfirmDialog asks for "Download Anyway" before the transfer.
	ConfirmDialog bool

	titles    map[string]string
	current   string
	downloads []string
}

// NewSite returns a create page listing existing rows
func NewSite(t *testing.T, existing ...Row) *Site {
	t.Helper()
	s := &Site{
		Page:         browsertest.NewPage(t, CreatePageDoc),
		MenuFailures: make(map[string]int),
		titles:       make(map[string]string),
	}
	s.AddRows(existing...)

	s.Page.OnClick("#create", func(c *browsertest.Click) {
		for i := len(s.NewRows) - 1; i >= 0; i-- {
			r := s.NewRows[i]
			s.titles[r.ID] = r.Title
			c.Doc.Find("#list").PrependHtml(RowHTML(r))
		}
	})
	s.Page.OnClick("button.more", func(c *browsertest.Click) {
		id, _ := c.Target.Attr("data-row")
		if s.MenuFailures[id] > 0 {
			s.MenuFailures[id]--
			return
		}
		s.current = id
		c.Remove("#menu")
		c.Append("#portal", `<div id="menu" role="menu"><div role="menuitem" class="dl">Download</div></div>`)
	})
	s.Page.OnClick(".dl", func(c *browsertest.Click) {
		if s.NoAudio {
			return
		}
		c.Append("#menu", `<div role="menuitem" class="video">Video</div><div role="menuitem" class="mp3">MP3 Audio</div>`)
	})
	s.Page.OnClick(".mp3", func(c *browsertest.Click) {
		if s.NoDownload {
			return
		}
		if s.ConfirmDialog {
			c.Append("#portal", `<div id="dialog"><button class="anyway">Download Anyway</button></div>`)
			return
		}
		s.deliver(c)
	})
	s.Page.OnClick(".anyway", func(c *browsertest.Click) {
		c.Remove("#dialog")
		s.deliver(c)
	})
	s.Page.OnInertClick(func(c *browsertest.Click) {
		c.Remove("#menu")
		c.Remove("#dialog")
	})
	return s
}

// AddRows appends rows to the bottom of the list
func (s *Site) AddRows(rows ...Row) {
	s.Page.Mutate(func(doc *goquery.Document) {
		for _, r := range rows {
			s.titles[r.ID] = r.Title
			doc.Find("#list").AppendHtml(RowHTML(r))
		}
	})
}

func (s *Site) deliver(c *browsertest.Click) {
	name := ""
	if title := s.titles[s.current]; title != "" {
		name = title + ".mp3"
	}
	if c.Download(name, []byte("ID3 "+s.current)) {
		s.downloads = append(s.downloads, s.current)
	}
}

// Downloads lists the row ids whose transfer was delivered
func (s *Site) Downloads() []string {
	var out []string
	s.Page.Mutate(func(*goquery.Document) {
		out = append(out, s.downloads...)
	})
	return out
}


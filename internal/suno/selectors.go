package suno

import "github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser"

// Known shapes of the Suno UI. Keep every selector here so a site change is a
// one-file fix.
const (
	songLinkSelector     = `a[href^="/song/"]`
	rowContainerSelector = "div.clip-row"
	rowAncestorFallback  = 6

	profileMenuSelector    = `button[data-testid="profile-menu"]`
	editableSelector       = `textarea, [contenteditable="true"]`
	songDescriptionText    = "Song Description"
	placeholderSelector    = `[placeholder*="Song Description"]`
	editableRoleSelector   = `div[contenteditable="true"], div[role="textbox"], span[contenteditable="true"]`
	ariaLabelInputSelector = `[aria-label="Song Description"]`

	enableInstrumentalSelector  = `button[aria-label="Enable instrumental mode"]`
	disableInstrumentalSelector = `button[aria-label="Disable instrumental mode"]`

	playButtonSelector = `button[aria-label="Play"], button[title="Play"], [data-testid="play-button"]`
)

var (
	quotaIndicators = []browser.Locator{
		browser.Text("Out of Credits"),
		browser.Text("0 credits left"),
	}

	createButton      = browser.CSS("button").WithText("Create", browser.ExactText).IgnoreCase()
	createButtonLabel = browser.CSS(`button[aria-label="Create"]`)

	downloadMenuItem = browser.CSS(`[role="menuitem"]`).WithText("Download", browser.ExactText)
	downloadText     = browser.Locator{}.WithText("Download", browser.ExactText)

	mp3AudioEntry     = browser.Text("MP3 Audio").PreferLast()
	genericAudioEntry = browser.Text("Audio").Excluding("Video").PreferLast()

	downloadAnywayButton = browser.CSS("button").WithText("Download Anyway", browser.ContainsText).IgnoreCase()
)

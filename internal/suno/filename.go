package suno

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]`)
	slugChars           = regexp.MustCompile(`(?i)[^a-z0-9]`)
)

const (
	slugLength        = 20
	maxNameCollisions = 1000
)

// SanitizeFilename replaces every character outside [A-Za-z0-9.-_] with an
// underscore. Sanitizing an already sanitized name returns it unchanged.
func SanitizeFilename(name string) string {
	safe := unsafeFilenameChars.ReplaceAllString(name, "_")
	if safe == "." || safe == ".." {
		return strings.Repeat("_", len(safe))
	}
	return safe
}

// PromptSlug derives a short file-safe stem from a prompt
func PromptSlug(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > slugLength {
		runes = runes[:slugLength]
	}
	slug := strings.ToLower(slugChars.ReplaceAllString(string(runes), "_"))
	if strings.Trim(slug, "_") == "" {
		return "song"
	}
	return slug
}

// FallbackFilename names a download that arrived without a suggested name
func FallbackFilename(prompt string, at time.Time) string {
	return fmt.Sprintf("%s_%d.mp3", PromptSlug(prompt), at.UnixMilli())
}

// UniquePath joins dir and name, inserting _1, _2, ... before the extension when the
// file already exists. The site gives both variants of a song the same name.
func UniquePath(dir, name string) (string, error) {
	candidate := filepath.Join(dir, name)
	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate, nil
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; i <= maxNameCollisions; i++ {
		candidate = filepath.Join(dir, stem+"_"+strconv.Itoa(i)+ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free file name for %s in %s", name, dir)
}

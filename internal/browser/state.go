package browser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/common/filemanager"
	"github.com/go-rod/rod/lib/proto"
)

// StorageState is the serialized authentication state reused across launches
type StorageState struct {
	Cookies []*proto.NetworkCookie `json:"cookies"`
	Origins []OriginState          `json:"origins,omitempty"`
	SavedAt time.Time              `json:"saved_at"`
}

// OriginState is the localStorage of one origin
type OriginState struct {
	Origin       string      `json:"origin"`
	LocalStorage []NameValue `json:"localStorage"`
}

// NameValue is one localStorage entry
type NameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// captureLocalStorageJS returns the current origin and its entries as a JSON string
const captureLocalStorageJS = `() => JSON.stringify({
  origin: location.origin,
  localStorage: Object.keys(localStorage).map(k => ({name: k, value: localStorage.getItem(k)})),
})`

// parseOriginState decodes the output of captureLocalStorageJS. Opaque origins
// such as about:blank yield ok=false.
func parseOriginState(raw string) (OriginState, bool, error) {
	var o OriginState
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		return OriginState{}, false, fmt.Errorf("failed to decode local storage: %w", err)
	}
	if o.Origin == "" || o.Origin == "null" {
		return OriginState{}, false, nil
	}
	return o, true, nil
}

// restoreLocalStorageJS builds a script for every new document that seeds the
// saved entries of its origin. Keys the site already set are left alone.
func restoreLocalStorageJS(origins []OriginState) (string, error) {
	seed := make(map[string][]NameValue, len(origins))
	for _, o := range origins {
		if len(o.LocalStorage) > 0 {
			seed[o.Origin] = o.LocalStorage
		}
	}
	if len(seed) == 0 {
		return "", nil
	}
	data, err := json.Marshal(seed)
	if err != nil {
		return "", fmt.Errorf("failed to encode local storage: %w", err)
	}
	return `(() => {
  const entries = (` + string(data) + `)[location.origin] || [];
  for (const e of entries) {
    if (localStorage.getItem(e.name) === null) localStorage.setItem(e.name, e.value);
  }
})()`, nil
}

// mergeOrigin replaces the entry for o.Origin, keeping other saved origins
func mergeOrigin(origins []OriginState, o OriginState) []OriginState {
	out := make([]OriginState, 0, len(origins)+1)
	for _, existing := range origins {
		if existing.Origin != o.Origin {
			out = append(out, existing)
		}
	}
	return append(out, o)
}

// LoadStorageState reads a state file. A missing file yields (nil, nil).
func LoadStorageState(path string) (*StorageState, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session state %s: %w", path, err)
	}

	var state StorageState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session state %s: %w", path, err)
	}
	return &state, nil
}

// SaveStorageState writes state atomically, creating parent directories
func SaveStorageState(path string, state *StorageState) error {
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	return filemanager.WriteFileAtomic(path, data, 0600)
}

// SaveAs moves the staged file to dst, copying when a rename across devices fails
func (d *Download) SaveAs(dst string) error {
	if d.Path == "" {
		return fmt.Errorf("download %s has no staged file", d.GUID)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}
	if err := os.Rename(d.Path, dst); err == nil {
		d.Path = dst
		return nil
	}

	src, err := os.Open(d.Path)
	if err != nil {
		return fmt.Errorf("failed to open staged download %s: %w", d.Path, err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy download to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	_ = os.Remove(d.Path)
	d.Path = dst
	return nil
}

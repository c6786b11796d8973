package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStorageState_MissingFile(t *testing.T) {
	state, err := LoadStorageState(filepath.Join(t.TempDir(), "auth.json"))

	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestLoadStorageState_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := LoadStorageState(path)

	assert.ErrorContains(t, err, "failed to decode session state")
}

func TestSaveStorageState_CreatesDirectoriesAndStamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "auth.json")
	state := &StorageState{Cookies: []*proto.NetworkCookie{{Name: "__session", Value: "abc", Domain: ".suno.com", Path: "/"}}}

	require.NoError(t, SaveStorageState(path, state))

	loaded, err := LoadStorageState(path)
	require.NoError(t, err)
	require.Len(t, loaded.Cookies, 1)
	assert.Equal(t, "__session", loaded.Cookies[0].Name)
	assert.False(t, loaded.SavedAt.IsZero())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestDownload_SaveAs(t *testing.T) {
	dir := t.TempDir()
	staged := filepath.Join(dir, "guid-1")
	require.NoError(t, os.WriteFile(staged, []byte("ID3"), 0644))
	d := &Download{GUID: "guid-1", Path: staged}

	dst := filepath.Join(dir, "songs", "track.mp3")
	require.NoError(t, d.SaveAs(dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "ID3", string(data))
	assert.Equal(t, dst, d.Path)
	assert.NoFileExists(t, staged)
}

func TestDownload_SaveAsWithoutStagedFile(t *testing.T) {
	d := &Download{GUID: "guid-2"}

	assert.Error(t, d.SaveAs(filepath.Join(t.TempDir(), "x.mp3")))
}

func TestParseOriginState(t *testing.T) {
	o, ok, err := parseOriginState(`{"origin":"https://suno.com","localStorage":[{"name":"clerk","value":"tok"}]}`)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://suno.com", o.Origin)
	assert.Equal(t, []NameValue{{Name: "clerk", Value: "tok"}}, o.LocalStorage)

	_, ok, err = parseOriginState(`{"origin":"null","localStorage":[]}`)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = parseOriginState(`not json`)
	assert.Error(t, err)
}

func TestRestoreLocalStorageJS(t *testing.T) {
	script, err := restoreLocalStorageJS(nil)
	require.NoError(t, err)
	assert.Empty(t, script)

	script, err = restoreLocalStorageJS([]OriginState{
		{Origin: "https://suno.com", LocalStorage: []NameValue{{Name: "clerk", Value: `a"b`}}},
		{Origin: "https://empty.test"},
	})
	require.NoError(t, err)
	assert.Contains(t, script, `"https://suno.com":[{"name":"clerk","value":"a\"b"}]`)
	assert.NotContains(t, script, "empty.test")
	assert.Contains(t, script, "localStorage.getItem(e.name) === null")
}

func TestSaveStorageState_KeepsOrigins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	origins := mergeOrigin(
		[]OriginState{{Origin: "https://suno.com", LocalStorage: []NameValue{{Name: "old", Value: "1"}}}, {Origin: "https://other.test"}},
		OriginState{Origin: "https://suno.com", LocalStorage: []NameValue{{Name: "new", Value: "2"}}},
	)

	require.NoError(t, SaveStorageState(path, &StorageState{Origins: origins}))

	loaded, err := LoadStorageState(path)
	require.NoError(t, err)
	require.Len(t, loaded.Origins, 2)
	assert.Equal(t, "https://other.test", loaded.Origins[0].Origin)
	assert.Equal(t, []NameValue{{Name: "new", Value: "2"}}, loaded.Origins[1].LocalStorage)
}

package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const songMIMEType = "audio/mpeg"

var (
	errSongNotFound    = errors.New("file not found")
	errSongOutsideDir  = errors.New("filename must name a file inside the downloads directory")
	errSongNameMissing = errors.New("filename is required")
)

type ListSongsInput struct{}

type GetSongInput struct {
	Filename string `json:"filename" jsonschema:"name of the file to retrieve, as printed by list_songs (e.g. song.mp3)"`
}

func (s *Server) listSongs(ctx context.Context, _ *mcp.CallToolRequest, _ ListSongsInput) (*mcp.CallToolResult, any, error) {
	dir := s.service.DownloadDir("")
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return textResult("No downloads directory found."), nil, nil
	}
	if err != nil {
		return s.failure("list_songs", err), nil, nil
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".mp3") {
			names = append(names, "- "+e.Name())
		}
	}
	return textResult(fmt.Sprintf("Found %d songs:\n%s", len(names), strings.Join(names, "\n"))), nil, nil
}

func (s *Server) getSong(ctx context.Context, _ *mcp.CallToolRequest, in GetSongInput) (*mcp.CallToolResult, any, error) {
	path, err := resolveSong(s.service.DownloadDir(""), in.Filename)
	if err != nil {
		return s.failure("get_song", err), nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s.failure("get_song", err), nil, nil
	}

	return &mcp.CallToolResult{Content: []mcp.Content{
		&mcp.TextContent{Text: "Here is the audio file: " + filepath.Base(path)},
		&mcp.EmbeddedResource{Resource: &mcp.ResourceContents{
			URI:      "file://" + filepath.ToSlash(path),
			MIMEType: songMIMEType,
			Blob:     data,
		}},
	}}, nil, nil
}

// resolveSong maps a client supplied name to a regular file inside dir. Symlinks
// are followed before the containment check.
func resolveSong(dir, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errSongNameMissing
	}
	if filepath.IsAbs(name) {
		return "", errSongOutsideDir
	}

	root, err := filepath.EvalSymlinks(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errSongNotFound
		}
		return "", err
	}
	path, err := filepath.EvalSymlinks(filepath.Join(root, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errSongNotFound
		}
		return "", err
	}

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errSongOutsideDir
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", errSongNotFound
	}
	return path, nil
}

// Package mcpserver exposes song generation as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/suno"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"

	serverName = "sunobot"

	quotaText = "🚫 **GENERATION FAILED: OUT OF CREDITS**\n\n" +
		"Your Suno account has reached its credit limit. You cannot generate more songs until your credits refresh.\n\n" +
		"Please log in explicitly to check your account status."
	loginText = "Login successful! Session saved. You can now use 'generate_song'."
)

// Automation is the part of automation.Service the tools drive
type Automation interface {
	Initialized() bool
	Initialize(ctx context.Context, headless bool) (bool, error)
	OpenLogin(ctx context.Context) error
	Generate(ctx context.Context, req suno.GenerateRequest) (suno.Result, error)
	DownloadRecent(ctx context.Context, count int, dir string) ([]string, error)
	DownloadDir(dir string) string
	Job(id string) (suno.JobStatus, error)
}

type GenerateSongInput struct {
	Prompt       string `json:"prompt" jsonschema:"description of the song to generate"`
	Instrumental bool   `json:"instrumental,omitempty" jsonschema:"generate without vocals"`
	Background   bool   `json:"background,omitempty" jsonschema:"return a job id at once and poll it with job_status"`
}

type DownloadRecentInput struct {
	Count *int `json:"count,omitempty" jsonschema:"number of songs from the top of the list, default 1"`
}

type OpenLoginInput struct{}

type JobStatusInput struct {
	JobID string `json:"job_id" jsonschema:"id returned by a background generate_song call"`
}

// Server registers the tools on an MCP server
type Server struct {
	service  Automation
	headless bool
	mcp      *mcp.Server
	logger   zerolog.Logger
}

// New builds the tool server. headless is used when a tool call has to start
// the browser.
func New(service Automation, version string, headless bool, logger zerolog.Logger) *Server {
	s := &Server{
		service:  service,
		headless: headless,
		mcp:      mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil),
		logger:   logger.With().Str("component", "MCPServer").Logger(),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "generate_song",
		Description: `Generate a song on Suno from a text prompt and download the resulting MP3 files.
Blocks until the songs are downloaded unless background is set.
Example: generate_song {prompt: "lo-fi beats for studying", instrumental: true}`,
	}, s.generateSong)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "download_recent",
		Description: "Download the most recent songs from the Suno library. Example: download_recent {count: 2}",
	}, s.downloadRecent)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "open_login_window",
		Description: "Open a visible browser window to log in to Suno manually. The session is saved for later headless use.",
	}, s.openLoginWindow)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "job_status",
		Description: "Report the state and downloaded files of a background generation job.",
	}, s.jobStatus)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_songs",
		Description: "List all downloaded song files available on the server.",
	}, s.listSongs)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_song",
		Description: "Retrieve a song file to play or download. Provide the filename from list_songs.",
	}, s.getSong)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}, IsError: true}
}

func (s *Server) failure(tool string, err error) *mcp.CallToolResult {
	if suno.IsQuotaExceeded(err) {
		return errorResult(quotaText)
	}
	s.logger.Error().Err(err).Str("tool", tool).Msg("Tool call failed")
	return errorResult("Error: " + err.Error())
}

// ensureReady starts the browser on the first tool call
func (s *Server) ensureReady(ctx context.Context) error {
	if s.service.Initialized() {
		return nil
	}
	s.logger.Info().Bool("headless", s.headless).Msg("Starting browser for tool call.")
	_, err := s.service.Initialize(ctx, s.headless)
	return err
}

func (s *Server) generateSong(ctx context.Context, _ *mcp.CallToolRequest, in GenerateSongInput) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(in.Prompt) == "" {
		return errorResult("Error: " + suno.ErrEmptyPrompt.Error()), nil, nil
	}
	if err := s.ensureReady(ctx); err != nil {
		return s.failure("generate_song", err), nil, nil
	}

	result, err := s.service.Generate(ctx, suno.GenerateRequest{
		Prompt:       in.Prompt,
		Instrumental: in.Instrumental,
		Wait:         !in.Background,
	})
	if err != nil {
		return s.failure("generate_song", err), nil, nil
	}
	if !result.Success {
		if suno.IsQuotaExceeded(errors.New(result.Error)) {
			return errorResult(quotaText), nil, nil
		}
		return errorResult("Error: " + result.Error), nil, nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return s.failure("generate_song", err), nil, nil
	}
	if result.JobID != "" {
		return textResult(fmt.Sprintf("%s Job: %s", result.Message, result.JobID)), nil, nil
	}
	return textResult(fmt.Sprintf("Successfully generated and downloaded song. prompt: %q. Result: %s", in.Prompt, data)), nil, nil
}

func (s *Server) downloadRecent(ctx context.Context, _ *mcp.CallToolRequest, in DownloadRecentInput) (*mcp.CallToolResult, any, error) {
	count := 1
	if in.Count != nil {
		count = *in.Count
	}
	if err := s.ensureReady(ctx); err != nil {
		return s.failure("download_recent", err), nil, nil
	}

	dir := s.service.DownloadDir("")
	paths, err := s.service.DownloadRecent(ctx, count, dir)
	if err != nil {
		return s.failure("download_recent", err), nil, nil
	}
	if len(paths) == 0 {
		return textResult("Downloads processed."), nil, nil
	}
	return textResult(fmt.Sprintf("Successfully processed downloads. Check directory: %s\n%s", dir, strings.Join(paths, "\n"))), nil, nil
}

func (s *Server) openLoginWindow(ctx context.Context, _ *mcp.CallToolRequest, _ OpenLoginInput) (*mcp.CallToolResult, any, error) {
	if err := s.service.OpenLogin(ctx); err != nil {
		return s.failure("open_login_window", err), nil, nil
	}
	return textResult(loginText), nil, nil
}

func (s *Server) jobStatus(ctx context.Context, _ *mcp.CallToolRequest, in JobStatusInput) (*mcp.CallToolResult, any, error) {
	status, err := s.service.Job(in.JobID)
	if err != nil {
		return s.failure("job_status", err), nil, nil
	}
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return s.failure("job_status", err), nil, nil
	}
	return textResult(string(data)), nil, nil
}

// Run serves the tools until ctx is cancelled. The http transport serves
// streamable HTTP sessions on addr.
func (s *Server) Run(ctx context.Context, transport, addr string) error {
	switch transport {
	case "", TransportStdio:
		s.logger.Info().Msg("Serving MCP over stdio.")
		return s.mcp.Run(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		return s.serveHTTP(ctx, addr)
	default:
		return fmt.Errorf("unknown MCP transport %q", transport)
	}
}

func (s *Server) serveHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcp }, nil)
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Serving MCP over streamable HTTP.")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

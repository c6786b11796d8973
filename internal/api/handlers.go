package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/common/errorwrapper"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/history"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/suno"
	"github.com/gorilla/mux"
)

const (
	msgNotInitialized     = "Bot not initialized. Call /api/init first."
	msgAlreadyInitialized = "Bot already initialized."
	msgInitialized        = "Bot initialized and logged in successfully."
	msgPromptRequired     = "Prompt is required"
	msgGenerated          = "Generation and download completed"
	msgDownloaded         = "Download process completed"
	msgClosed             = "Browser closed."
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type initRequest struct {
	Headless *bool `json:"headless"`
}

type generateRequest struct {
	Prompt       string `json:"prompt"`
	Instrumental bool   `json:"instrumental"`
	Wait         *bool  `json:"wait"`
	Dir          string `json:"dir"`
}

type generateResponse struct {
	Message string      `json:"message"`
	Data    suno.Result `json:"data"`
}

type downloadRequest struct {
	Count *int   `json:"count"`
	Dir   string `json:"dir"`
}

type downloadResponse struct {
	Message           string   `json:"message"`
	DownloadDirectory string   `json:"download_directory"`
	Paths             []string `json:"paths"`
}

type healthResponse struct {
	Status      string `json:"status"`
	Initialized bool   `json:"initialized"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) writeFailure(w http.ResponseWriter, action string, err error) {
	if errors.Is(err, errorwrapper.ErrNotInitialized) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgNotInitialized})
		return
	}
	s.logger.Error().Err(err).Str("action", action).Msg("Request failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: action + " failed", Details: err.Error()})
}

// decodeBody reads an optional JSON body. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body", Details: err.Error()})
}

// Health handles GET /api/health
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Initialized: s.service.Initialized()})
}

// Init handles POST /api/init
func (s *Server) Init(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	headless := s.headless
	if req.Headless != nil {
		headless = *req.Headless
	}

	started, err := s.service.Initialize(r.Context(), headless)
	if err != nil {
		s.writeFailure(w, "Initialization", err)
		return
	}
	if !started {
		writeJSON(w, http.StatusOK, messageResponse{Message: msgAlreadyInitialized})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msgInitialized})
}

// Generate handles POST /api/generate
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgPromptRequired})
		return
	}
	wait := true
	if req.Wait != nil {
		wait = *req.Wait
	}

	result, err := s.service.Generate(r.Context(), suno.GenerateRequest{
		Prompt:       req.Prompt,
		Instrumental: req.Instrumental,
		TargetDir:    req.Dir,
		Wait:         wait,
	})
	switch {
	case errors.Is(err, suno.ErrEmptyPrompt):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgPromptRequired})
	case err != nil:
		s.writeFailure(w, "Generation", err)
	case !result.Success && suno.IsQuotaExceeded(errors.New(result.Error)):
		writeJSON(w, http.StatusPaymentRequired, errorResponse{Error: "Generation failed", Details: result.Error})
	case result.JobID != "":
		writeJSON(w, http.StatusAccepted, generateResponse{Message: result.Message, Data: result})
	default:
		writeJSON(w, http.StatusOK, generateResponse{Message: msgGenerated, Data: result})
	}
}

// Download handles POST /api/download
func (s *Server) Download(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	count := s.config.RecentDefaultCount
	if req.Count != nil {
		count = *req.Count
	}
	dir := s.service.DownloadDir(req.Dir)

	paths, err := s.service.DownloadRecent(r.Context(), count, dir)
	if err != nil {
		s.writeFailure(w, "Download", err)
		return
	}
	if paths == nil {
		paths = []string{}
	}
	writeJSON(w, http.StatusOK, downloadResponse{Message: msgDownloaded, DownloadDirectory: dir, Paths: paths})
}

// ListJobs handles GET /api/jobs
func (s *Server) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.service.Jobs()
	if jobs == nil {
		jobs = []suno.JobStatus{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

// GetJob handles GET /api/jobs/{id}
func (s *Server) GetJob(w http.ResponseWriter, r *http.Request) {
	status, err := s.service.Job(mux.Vars(r)["id"])
	if errors.Is(err, suno.ErrJobNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Job not found"})
		return
	}
	if err != nil {
		s.writeFailure(w, "Job lookup", err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// History handles GET /api/history?limit=N
func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid limit", Details: raw})
			return
		}
		limit = n
	}

	records, err := s.service.History(r.Context(), limit)
	if err != nil {
		s.writeFailure(w, "History", err)
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// Close handles POST /api/close
func (s *Server) Close(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Close(r.Context()); err != nil {
		s.writeFailure(w, "Close", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msgClosed})
}

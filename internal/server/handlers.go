package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/michaelbrown/runcheck/internal/runner"
	"github.com/michaelbrown/runcheck/internal/storage"
)

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// --- Execute ---

// executeRequest asks for one execution, either of a file already in
// the code folder (path) or of raw source text (code + language).
type executeRequest struct {
	Path        string  `json:"path"`
	Code        string  `json:"code"`
	Language    string  `json:"language"`
	FileName    string  `json:"filename"`
	Input       *string `json:"input"`
	TimeLimitMS int64   `json:"time_limit_ms"`
}

// doExecute resolves the request to a source file, runs it, and records
// the run. A returned error is a client error; execution failures are
// carried inside the Run's status.
func (s *Server) doExecute(ctx context.Context, req executeRequest) (*storage.Run, error) {
	var sourcePath string

	switch {
	case req.Path != "":
		if filepath.Base(req.Path) != req.Path {
			return nil, fmt.Errorf("path must be a bare file name inside the code folder")
		}
		sourcePath = filepath.Join(s.codeDir, req.Path)

	case req.Code != "":
		lang := runner.Language(req.Language)
		ext := runner.ExtensionFor(lang)
		if ext == "" {
			return nil, fmt.Errorf("unknown language %q", req.Language)
		}
		name := req.FileName
		if name == "" {
			name = "snippet-" + uuid.NewString()[:8] + ext
		}
		if filepath.Base(name) != name {
			return nil, fmt.Errorf("filename must be a bare file name")
		}
		sourcePath = filepath.Join(s.codeDir, name)
		if err := os.WriteFile(sourcePath, []byte(req.Code), 0o644); err != nil {
			return nil, fmt.Errorf("writing source file: %w", err)
		}
		defer os.Remove(sourcePath)

	default:
		return nil, fmt.Errorf("either path or code is required")
	}

	limit := s.cfg.TimeLimit
	if req.TimeLimitMS > 0 {
		limit = time.Duration(req.TimeLimitMS) * time.Millisecond
	}

	runReq := runner.Request{
		SourcePath: sourcePath,
		TimeLimit:  limit,
	}
	if req.Input != nil {
		runReq.Input = *req.Input
		runReq.HasInput = true
	}

	s.execMu.Lock()
	res := s.runner.Execute(ctx, runReq)
	s.execMu.Unlock()

	run := &storage.Run{
		ID:        uuid.New().String(),
		FileName:  filepath.Base(sourcePath),
		Language:  res.Language,
		Status:    res.Status,
		RuntimeMS: res.RuntimeMS,
		Stdout:    res.Stdout,
		Stderr:    res.Stderr,
		ExitCode:  res.ExitCode,
	}

	// History is best-effort; a storage failure never alters the result.
	if err := s.store.CreateRun(ctx, run); err != nil {
		log.Printf("recording run %s: %v", run.ID, err)
	}

	return run, nil
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	run, err := s.doExecute(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// --- Run history handlers ---

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	opts := storage.RunListOptions{}

	if status := r.URL.Query().Get("status"); status != "" {
		opts.Status = runner.Status(status)
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			opts.Limit = n
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil {
			opts.Offset = n
		}
	}

	runs, err := s.store.ListRuns(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if runs == nil {
		runs = []storage.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, "run not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteRun(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, "run not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Languages ---

func (s *Server) handleListLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.runner.ToolInfo())
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"recbutton/internal/clips"
	"recbutton/internal/encoder"
	"recbutton/internal/model"
)

// genericErrMsg is the only failure detail write paths leak to clients;
// diagnostics go to the logs.
const genericErrMsg = "Unable to generate file, see server logs for details"

// validName rejects filenames that could escape the output directory.
func validName(name string) bool {
	return name != "" && name == filepath.Base(name)
}

// ---------------------------------------------------------------------------
// GET /get_playtime
// ---------------------------------------------------------------------------

func (s *Server) handlePlaytime(w http.ResponseWriter, r *http.Request) {
	playtime, err := s.clips.Playtime(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Nothing playing")
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"playtime": playtime})
}

// ---------------------------------------------------------------------------
// GET /get_playing_now
// ---------------------------------------------------------------------------

func (s *Server) handlePlayingNow(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.clips.NowPlaying(r.Context()))
}

// ---------------------------------------------------------------------------
// POST /submit
// ---------------------------------------------------------------------------

type submitRequest struct {
	StartTime string `json:"startTime"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	filename, err := s.clips.Submit(r.Context(), req.StartTime)
	if err != nil {
		slog.Error("failed to generate clip", "error", err, "detail", encodeDetail(err))
		writeError(w, http.StatusInternalServerError, genericErrMsg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"filename": filename})
}

// ---------------------------------------------------------------------------
// POST /regenerate
// ---------------------------------------------------------------------------

type regenerateRequest struct {
	Filename string `json:"filename"`
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	slog.Info("regenerating clip", "filename", req.Filename)
	filename, err := s.clips.Regenerate(r.Context(), req.Filename)
	if err != nil {
		slog.Error("failed to regenerate clip", "filename", req.Filename, "error", err, "detail", encodeDetail(err))
		writeError(w, http.StatusInternalServerError, genericErrMsg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"filename": filename})
}

// ---------------------------------------------------------------------------
// GET /download/{filename}
// ---------------------------------------------------------------------------

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	if !validName(filename) {
		writeError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, filepath.Join(s.outputDir, filename))
}

// ---------------------------------------------------------------------------
// GET /get_history
// ---------------------------------------------------------------------------

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.clips.History(r.Context())
	if err != nil {
		slog.Error("failed to load history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// ---------------------------------------------------------------------------
// POST /search_history
// ---------------------------------------------------------------------------

type searchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSearchHistory(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	entries, err := s.clips.SearchHistory(r.Context(), req.Query)
	if err != nil {
		slog.Error("failed to search history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to search history")
		return
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// ---------------------------------------------------------------------------
// POST /delete
// ---------------------------------------------------------------------------

type deleteRequest struct {
	Filename string `json:"filename"`
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !validName(req.Filename) {
		writeError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	if err := s.clips.Delete(r.Context(), req.Filename); err != nil {
		slog.Error("failed to delete clip", "filename", req.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete clip")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": req.Filename})
}

// ---------------------------------------------------------------------------
// POST /rename
// ---------------------------------------------------------------------------

type renameRequest struct {
	Old string `json:"old"`
	New string `json:"new"`
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	newName := clips.NormalizeFilename(req.New)
	if !validName(req.Old) || !validName(newName) {
		writeError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	err := s.clips.Rename(r.Context(), req.Old, newName)
	switch {
	case errors.Is(err, model.ErrDuplicate):
		writeError(w, http.StatusConflict, fmt.Sprintf("File named %s already exists", newName))
		return
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "clip not found")
		return
	case err != nil:
		slog.Error("failed to rename clip", "old", req.Old, "new", newName, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to rename clip")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"filename": newName})
}

// encodeDetail surfaces captured encoder diagnostics for the log line.
func encodeDetail(err error) string {
	var encErr *encoder.EncodeError
	if errors.As(err, &encErr) {
		return encErr.Output
	}
	return ""
}

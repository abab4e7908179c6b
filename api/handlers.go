/*
handlers.go - HTTP API handlers for the attendance tracker

PURPOSE:
  Exposes the wage engine, log repository and live session over REST.
  Handles HTTP request/response, JSON serialization and validation, and
  delegates to the domain packages.

ENDPOINTS:
  Data blob (legacy-compatible):
    GET    /api/data?user={u}                  Load {logs, tags} document
    POST   /api/data?user={u}                  Overwrite the whole document

  Tags:
    GET    /api/users/{username}/tags          List rate profiles
    POST   /api/users/{username}/tags          Create rate profile
    PUT    /api/users/{username}/tags/{tagID}  Update rate profile

  Logs:
    GET    /api/users/{username}/logs          Paginated sorted logs
    POST   /api/users/{username}/logs          Save (create/update) a log
    DELETE /api/users/{username}/logs/{logID}?date=YYYY-MM-DD

  Views:
    GET    /api/users/{username}/summary       Weekly/monthly/tag-period sums
    GET    /api/users/{username}/export        Download the user document
    POST   /api/users/{username}/import        Replace from a document

  Session:
    GET    /api/users/{username}/session           Session status
    POST   /api/users/{username}/session/start     Clock in
    POST   /api/users/{username}/session/rest/start
    POST   /api/users/{username}/session/rest/end
    POST   /api/users/{username}/session/stop      Clock out + flush

  Holidays:
    GET    /api/holidays                       Loaded holiday mapping

ARCHITECTURE:
  Handler holds the persistence store, the holiday oracle, and caches of
  per-user repositories and live sessions. Repositories are created on first
  touch by loading the stored snapshot.

ERROR HANDLING:
  Errors come back as JSON with appropriate HTTP status: 400 for validation,
  404 for missing resources, 500 for store failures. Unknown tags on wage
  paths are NOT errors; the engine degrades to a zero wage by design.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shiftwage/attendance-engine/engine"
	"github.com/shiftwage/attendance-engine/holiday"
	"github.com/shiftwage/attendance-engine/logbook"
	"github.com/shiftwage/attendance-engine/tracker"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	store    logbook.Persister
	holidays *holiday.Oracle
	logger   *slog.Logger
	validate *validator.Validate

	sessionDir string
	debounce   time.Duration

	mu       sync.Mutex
	repos    map[string]*logbook.Repository
	sessions map[string]*tracker.Session
}

// HandlerConfig wires the handler's collaborators.
type HandlerConfig struct {
	Store      logbook.Persister
	Holidays   *holiday.Oracle
	Logger     *slog.Logger
	SessionDir string
	Debounce   time.Duration
}

// NewHandler creates a handler over the given store and holiday oracle.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SessionDir == "" {
		cfg.SessionDir = "./sessions"
	}
	return &Handler{
		store:      cfg.Store,
		holidays:   cfg.Holidays,
		logger:     cfg.Logger,
		validate:   validator.New(),
		sessionDir: cfg.SessionDir,
		debounce:   cfg.Debounce,
		repos:      make(map[string]*logbook.Repository),
		sessions:   make(map[string]*tracker.Session),
	}
}

// repoFor returns the cached repository for username, loading the stored
// snapshot on first touch.
func (h *Handler) repoFor(r *http.Request, username string) (*logbook.Repository, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if repo, ok := h.repos[username]; ok {
		return repo, nil
	}
	opts := logbook.Options{Debounce: h.debounce, Logger: h.logger}
	if h.holidays != nil {
		// A typed nil inside the interface would defeat the repository's
		// own nil check.
		opts.Holidays = h.holidays
	}
	repo, err := logbook.New(r.Context(), username, h.store, opts)
	if err != nil {
		return nil, err
	}
	h.repos[username] = repo
	return repo, nil
}

// sessionFor returns the cached live session for username, restoring any
// durable snapshot on first touch.
func (h *Handler) sessionFor(r *http.Request, username string) (*tracker.Session, error) {
	repo, err := h.repoFor(r, username)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if sess, ok := h.sessions[username]; ok {
		return sess, nil
	}
	sess, err := tracker.New(tracker.Config{
		Repo:     repo,
		StateDir: h.sessionDir,
		Logger:   h.logger,
	})
	if err != nil {
		return nil, err
	}
	h.sessions[username] = sess
	return sess, nil
}

// =============================================================================
// DATA BLOB HANDLERS (legacy-compatible document API)
// =============================================================================

// GetData returns the stored document for the user query parameter.
// A user with no data gets the empty {logs: [], tags: []} shape.
func (h *Handler) GetData(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("user")
	if username == "" {
		writeError(w, http.StatusBadRequest, "User parameter is required", nil)
		return
	}

	snap, err := h.store.Load(r.Context(), username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read data", err)
		return
	}

	if len(snap.Logs) == 0 && len(snap.Tags) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"logs": []any{}, "tags": []any{}})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// PostData overwrites the stored document for the user query parameter.
// Last writer wins; there is no conflict detection across devices.
func (h *Handler) PostData(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("user")
	if username == "" {
		writeError(w, http.StatusBadRequest, "User parameter is required", nil)
		return
	}

	var snap logbook.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.store.Save(r.Context(), username, snap); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save data", err)
		return
	}

	// Drop any cached repository so the next touch reloads the new blob.
	// Its debounce timer must die with it, or a mutation made just before
	// this POST would overwrite the blob when the timer fires.
	h.mu.Lock()
	if repo, ok := h.repos[username]; ok {
		repo.DiscardPending()
	}
	delete(h.repos, username)
	delete(h.sessions, username)
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "Data saved successfully"})
}

// =============================================================================
// TAG HANDLERS
// =============================================================================

// ListTags returns all rate profiles for a user.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repoFor(r, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return
	}
	writeJSON(w, http.StatusOK, repo.Tags())
}

// CreateTag creates a rate profile from a sanitized request.
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if err := h.readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid tag", err)
		return
	}

	repo, err := h.repoFor(r, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return
	}
	writeJSON(w, http.StatusCreated, repo.AddTag(req.profile()))
}

// UpdateTag merges sanitized fields over an existing profile.
func (h *Handler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	tagID, err := strconv.ParseInt(chi.URLParam(r, "tagID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid tag id", err)
		return
	}

	var req TagRequest
	if err := h.readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid tag", err)
		return
	}

	repo, err := h.repoFor(r, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return
	}

	profile := req.profile()
	profile.ID = engine.TagID(tagID)
	updated, err := repo.UpdateTag(profile)
	if errors.Is(err, logbook.ErrTagNotFound) {
		writeError(w, http.StatusNotFound, "Tag not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update tag", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// =============================================================================
// LOG HANDLERS
// =============================================================================

// ListLogs returns one page of the user's logs, most recently modified
// first. Query: page (default 1), perPage (default 5).
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repoFor(r, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return
	}

	// Absent or malformed paging parameters parse to zero; Paginate owns
	// the defaults.
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	writeJSON(w, http.StatusOK, repo.Paginate(page, perPage))
}

// SaveLog creates or updates a log; the wage engine runs on every save.
func (h *Handler) SaveLog(w http.ResponseWriter, r *http.Request) {
	var req SaveLogRequest
	if err := h.readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid log", err)
		return
	}

	repo, err := h.repoFor(r, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return
	}
	writeJSON(w, http.StatusOK, repo.SaveLog(req.input()))
}

// DeleteLog removes a log from the named date bucket.
func (h *Handler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	logID, err := strconv.ParseInt(chi.URLParam(r, "logID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid log id", err)
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "date parameter is required", nil)
		return
	}

	repo, err := h.repoFor(r, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return
	}
	repo.DeleteLog(logbook.LogID(logID), date)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Log deleted"})
}

// =============================================================================
// SUMMARY / EXPORT / IMPORT
// =============================================================================

// GetSummary returns the weekly, monthly and per-tag pay-period sums.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repoFor(r, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return
	}

	now := time.Now()
	writeJSON(w, http.StatusOK, SummaryResponse{
		Weekly:  repo.WeeklySummary(now),
		Monthly: repo.MonthlySummary(now),
		Tags:    repo.TagSummaries(now),
	})
}

// ExportData streams the user's round-trippable document as a download.
func (h *Handler) ExportData(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	repo, err := h.repoFor(r, username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return
	}

	doc, err := repo.Export()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export data", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", username+"_attendance_data.json"))
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// ImportData replaces the user's data from an uploaded document. A document
// that fails to parse aborts with no partial mutation.
func (h *Handler) ImportData(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repoFor(r, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}
	if err := repo.Import(body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid document", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Data imported"})
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// GetSession reports the live session status.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load session", err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Status())
}

// StartSession clocks the user in against a tag.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := h.readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session request", err)
		return
	}

	sess, err := h.sessionFor(r, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load session", err)
		return
	}
	writeJSON(w, http.StatusOK, sess.StartTracking(engine.TagID(req.TagID)))
}

// StartRest begins an unpaid break.
func (h *Handler) StartRest(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load session", err)
		return
	}
	writeJSON(w, http.StatusOK, sess.StartRest())
}

// EndRest ends an unpaid break.
func (h *Handler) EndRest(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load session", err)
		return
	}
	writeJSON(w, http.StatusOK, sess.EndRest())
}

// StopSession clocks the user out, finalizes the log and flushes
// persistence. The outcome is a structured success/failure result.
func (h *Handler) StopSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load session", err)
		return
	}

	result := sess.EndTracking(r.Context())
	status := http.StatusOK
	if !result.Success {
		status = http.StatusConflict
	}
	writeJSON(w, status, result)
}

// =============================================================================
// HOLIDAY HANDLER
// =============================================================================

// ListHolidays returns the loaded holiday mapping. Triggers the one-time
// load if it has not happened yet.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	if h.holidays == nil {
		writeJSON(w, http.StatusOK, map[string]string{})
		return
	}
	h.holidays.Load(r.Context())
	writeJSON(w, http.StatusOK, h.holidays.All())
}

// =============================================================================
// HELPERS
// =============================================================================

// readJSON decodes the request body into v and validates its struct tags.
func (h *Handler) readJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return h.validate.Struct(v)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

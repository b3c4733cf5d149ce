package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type archiveHandler struct {
	logger  *slog.Logger
	archive archiveRepo
}

func newArchiveHandler(logger *slog.Logger, archive archiveRepo) *archiveHandler {
	return &archiveHandler{
		logger:  logger,
		archive: archive,
	}
}

func (that *archiveHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetByID")

	id := chi.URLParam(r, "id")

	session, err := that.archive.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrSessionNotArchived) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get archived session", "gameID", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, log, session)
}

// ListRecent returns the most recently finished sessions, newest first.
func (that *archiveHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ListRecent")

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		limit = min(parsed, maxListLimit)
	}

	sessions, err := that.archive.ListRecent(r.Context(), int64(limit))
	if err != nil {
		log.Error("failed to list archived sessions", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, log, sessions)
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response", "error", err)
	}
}

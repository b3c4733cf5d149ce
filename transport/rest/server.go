package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type archiveRepo interface {
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	ListRecent(ctx context.Context, limit int64) ([]*entity.Session, error)
}

type Server struct {
	logger  *slog.Logger
	archive archiveRepo
}

// New creates the HTTP surface. Archive routes are mounted only when archive is set.
func New(logger *slog.Logger, archive archiveRepo) *Server {
	return &Server{
		logger:  logger,
		archive: archive,
	}
}

func (that *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/ping", that.ping)

	if that.archive != nil {
		archive := newArchiveHandler(that.logger, that.archive)

		router.Route("/api/archive", func(r chi.Router) {
			r.Get("/", archive.ListRecent)
			r.Get("/{id}", archive.GetByID)
		})
	}

	return router
}

// Start serves HTTP until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

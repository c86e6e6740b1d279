package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/sluggable/example/repository"
	"github.com/dmitrymomot/sluggable/pkg/sluggable"
)

// Store is the article persistence the handler needs.
type Store interface {
	Create(ctx context.Context, in repository.Input) (repository.Article, error)
	Update(ctx context.Context, id uuid.UUID, in repository.Input) (repository.Article, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetBySlug(ctx context.Context, slug string) (repository.Article, error)
}

// ArticleHandler serves the articles API.
type ArticleHandler struct {
	store  Store
	logger *slog.Logger
}

// NewArticleHandler creates the handler.
func NewArticleHandler(store Store, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{store: store, logger: logger}
}

// Routes mounts the handler on r.
func (h *ArticleHandler) Routes(r chi.Router) {
	r.Route("/articles", func(r chi.Router) {
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Get("/{slug}", h.get)
	})
}

func (h *ArticleHandler) create(w http.ResponseWriter, r *http.Request) {
	var in repository.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.store.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *ArticleHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}

	var in repository.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ArticleHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ArticleHandler) get(w http.ResponseWriter, r *http.Request) {
	a, err := h.store.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ArticleHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "article not found")
	case errors.Is(err, sluggable.ErrTooManyConflicts), errors.Is(err, sluggable.ErrLockFailed):
		writeError(w, http.StatusConflict, "could not assign a unique slug, retry later")
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

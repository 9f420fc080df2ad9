// Package read реализует HTTP-обработчик чтения записи блога по slug.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/summraize/summraize-backend/internal/http/response"
	"github.com/summraize/summraize-backend/internal/lib/sl"
	"github.com/summraize/summraize-backend/internal/models"
)

// Service описывает интерфейс чтения записи.
type Service interface {
	Read(ctx context.Context, slug string) (*models.Post, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Прочитать запись блога
// @Tags Blog
// @Produce json
// @Param slug path string true "Slug записи"
// @Success 200 {object} map[string]any "Запись блога"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Router /blog/{slug} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.blog.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	slug := chi.URLParam(r, "slug")
	if slug == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("slug is required"))
		return
	}

	post, err := h.service.Read(r.Context(), slug)
	if err != nil {
		log.Error("failed to read post", sl.Err(err))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("post not found"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(post))
}

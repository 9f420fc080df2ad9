// Package imagesearch реализует HTTP-обработчик поиска обложек для записей
// блога через Unsplash.
package imagesearch

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/summraize/summraize-backend/internal/http/response"
	"github.com/summraize/summraize-backend/internal/lib/sl"
	"github.com/summraize/summraize-backend/internal/providers/unsplash"
)

// Service описывает интерфейс поиска фотографий.
type Service interface {
	SearchPhotos(ctx context.Context, query string, perPage int) ([]unsplash.Photo, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Поиск изображений для обложек
// @Description Ищет фотографии по запросу. Только для администраторов.
// @Tags Blog
// @Produce json
// @Param query query string true "Поисковый запрос"
// @Param per_page query int false "Количество результатов" default(12)
// @Success 200 {object} map[string]any "Список фотографий"
// @Failure 502 {object} response.ErrorResponse "Провайдер недоступен"
// @Security BearerAuth
// @Router /admin/images [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.blog.imagesearch"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	query := r.URL.Query().Get("query")
	if query == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("query is required"))
		return
	}

	perPage, err := strconv.Atoi(r.URL.Query().Get("per_page"))
	if err != nil {
		perPage = 12
	}

	photos, err := h.service.SearchPhotos(r.Context(), query, perPage)
	if err != nil {
		log.Error("failed to search photos", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not search photos"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"photos": photos,
	}))
}

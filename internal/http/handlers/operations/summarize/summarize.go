// Package summarize реализует HTTP-обработчик резюмирования текста.
package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/summraize/summraize-backend/internal/http/middlewarectx"
	"github.com/summraize/summraize-backend/internal/http/response"
	"github.com/summraize/summraize-backend/internal/lib/sl"
	"github.com/summraize/summraize-backend/internal/services/credits"
	"github.com/summraize/summraize-backend/internal/services/summary"
)

// Request — текст для резюмирования
type Request struct {
	Text string `json:"text" validate:"required,min=100"`
}

// Service описывает интерфейс резюмирования.
type Service interface {
	Summarize(ctx context.Context, username, text string) (*summary.Result, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Резюмировать текст
// @Description Возвращает резюме текста и списанную стоимость по фактическим токенам.
// @Tags Operations
// @Accept json
// @Produce json
// @Param request body Request true "Текст для резюмирования"
// @Success 200 {object} map[string]any "Резюме и стоимость"
// @Failure 402 {object} response.CreditsErrorResponse "Недостаточно кредитов"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Провайдеры недоступны"
// @Security BearerAuth
// @Router /summarize [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.operations.summarize"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	result, err := h.service.Summarize(r.Context(), username, req.Text)
	if err != nil {
		var insufficientErr *credits.InsufficientCreditsError
		if errors.As(err, &insufficientErr) {
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.InsufficientCredits(insufficientErr.Required, insufficientErr.Available))
			return
		}
		log.Error("failed to summarize text", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not summarize text"))
		return
	}

	log.Info("text summarized", slog.String("provider", result.Provider), slog.Int64("cost", result.Cost))
	render.JSON(w, r, response.StatusOKWithData(result))
}

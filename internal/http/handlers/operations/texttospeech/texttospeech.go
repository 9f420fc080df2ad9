// Package texttospeech реализует HTTP-обработчик синтеза речи.
//
// Handler возвращает MP3-аудио, уровень качества голоса и стоимость
// передаются в заголовках ответа.
package texttospeech

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/summraize/summraize-backend/internal/http/middlewarectx"
	"github.com/summraize/summraize-backend/internal/http/response"
	"github.com/summraize/summraize-backend/internal/lib/sl"
	"github.com/summraize/summraize-backend/internal/services/credits"
	"github.com/summraize/summraize-backend/internal/services/speech"
)

// Request — текст для синтеза речи
type Request struct {
	Text string `json:"text" validate:"required,min=1,max=100000"`
}

// Service описывает интерфейс синтеза речи.
type Service interface {
	Synthesize(ctx context.Context, username, text string) (*speech.Result, error)
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
// @Summary Озвучить текст
// @Description Синтезирует речь лучшим доступным голосом. Возвращает MP3, стоимость — в заголовках X-Credits-Cost и X-Credits-Remaining.
// @Tags Operations
// @Accept json
// @Produce octet-stream
// @Param request body Request true "Текст для озвучивания"
// @Success 200 {file} binary "MP3-аудио"
// @Failure 402 {object} response.CreditsErrorResponse "Недостаточно кредитов"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Провайдер недоступен"
// @Security BearerAuth
// @Router /tts [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.operations.texttospeech"

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

	result, err := h.service.Synthesize(r.Context(), username, req.Text)
	if err != nil {
		var insufficientErr *credits.InsufficientCreditsError
		if errors.As(err, &insufficientErr) {
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.InsufficientCredits(insufficientErr.Required, insufficientErr.Available))
			return
		}
		log.Error("failed to synthesize speech", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not synthesize speech"))
		return
	}

	log.Info("speech synthesized", slog.String("tier", result.Tier), slog.Int64("cost", result.Cost))

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("X-Voice-Tier", result.Tier)
	w.Header().Set("X-Credits-Cost", strconv.FormatInt(result.Cost, 10))
	w.Header().Set("X-Credits-Remaining", strconv.FormatInt(result.Remaining, 10))
	if _, err := w.Write(result.Audio); err != nil {
		log.Error("failed to write audio response", sl.Err(err))
	}
}

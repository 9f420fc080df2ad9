// Package processaudio реализует HTTP-обработчик распознавания аудио.
//
// Handler принимает multipart-запрос с аудиофайлом и заявленной
// длительностью, проверяет баланс, вызывает распознавание и возвращает
// расшифровку вместе со списанной стоимостью.
package processaudio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/summraize/summraize-backend/internal/http/middlewarectx"
	"github.com/summraize/summraize-backend/internal/http/response"
	"github.com/summraize/summraize-backend/internal/lib/sl"
	"github.com/summraize/summraize-backend/internal/services/audio"
	"github.com/summraize/summraize-backend/internal/services/credits"
)

// maxAudioSize ограничивает размер загружаемого файла (100 МБ).
const maxAudioSize = 100 << 20

// Service описывает интерфейс обработки аудио.
type Service interface {
	Process(ctx context.Context, username string, audio []byte, contentType string, declaredSeconds float64) (*audio.Result, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Распознать аудио
// @Description Принимает аудиофайл (поле file) и заявленную длительность (поле duration_seconds), возвращает расшифровку.
// @Tags Operations
// @Accept mpfd
// @Produce json
// @Param file formData file true "Аудиофайл"
// @Param duration_seconds formData number true "Заявленная длительность в секундах"
// @Success 200 {object} map[string]any "Расшифровка и стоимость"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 402 {object} response.CreditsErrorResponse "Недостаточно кредитов"
// @Failure 500 {object} response.ErrorResponse "Ошибка обработки"
// @Security BearerAuth
// @Router /audio/process [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.operations.processaudio"

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

	if err := r.ParseMultipartForm(maxAudioSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	declaredSeconds, err := strconv.ParseFloat(r.FormValue("duration_seconds"), 64)
	if err != nil || declaredSeconds <= 0 {
		log.Error("invalid declared duration")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("duration_seconds must be a positive number"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Error("audio file missing", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("audio file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error("failed to read audio file", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("could not read audio file"))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := h.service.Process(r.Context(), username, data, contentType, declaredSeconds)
	if err != nil {
		var insufficientErr *credits.InsufficientCreditsError
		if errors.As(err, &insufficientErr) {
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.InsufficientCredits(insufficientErr.Required, insufficientErr.Available))
			return
		}
		log.Error("failed to process audio", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process audio"))
		return
	}

	log.Info("audio processed", slog.Float64("duration", result.DurationSeconds), slog.Int64("cost", result.Cost))
	render.JSON(w, r, response.StatusOKWithData(result))
}

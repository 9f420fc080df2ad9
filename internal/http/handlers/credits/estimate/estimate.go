// Package estimate реализует HTTP-обработчик предварительной оценки
// стоимости операций в кредитах.
package estimate

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/summraize/summraize-backend/internal/http/response"
	"github.com/summraize/summraize-backend/internal/lib/costs"
	"github.com/summraize/summraize-backend/internal/lib/sl"
)

// Request — размеры входных данных для оценки. Для полного аудио-конвейера
// достаточно передать audio_duration_seconds, для текстового — word_count.
// Поля взаимоисключающие с точными размерами text_length/summary_length.
type Request struct {
	AudioLengthSeconds   float64 `json:"audio_length_seconds"`
	TextLength           int     `json:"text_length"`
	SummaryLength        int     `json:"summary_length"`
	AudioDurationSeconds float64 `json:"audio_duration_seconds"`
	WordCount            int     `json:"word_count"`
}

type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Оценить стоимость операций
// @Description Возвращает постатейную оценку стоимости в кредитах без списания.
// @Tags Credits
// @Accept json
// @Produce json
// @Param request body Request true "Размеры входных данных"
// @Success 200 {object} map[string]any "Постатейная оценка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Security BearerAuth
// @Router /credits/estimate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.credits.estimate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	var breakdown costs.Breakdown
	switch {
	case req.AudioDurationSeconds > 0:
		breakdown = costs.EstimateFromAudioDuration(req.AudioDurationSeconds)
	case req.WordCount > 0:
		breakdown = costs.EstimateFromWordCount(req.WordCount)
	default:
		breakdown = costs.Estimate(costs.Input{
			AudioLengthSeconds: req.AudioLengthSeconds,
			TextLength:         req.TextLength,
			SummaryLength:      req.SummaryLength,
		})
	}

	render.JSON(w, r, response.StatusOKWithData(breakdown))
}

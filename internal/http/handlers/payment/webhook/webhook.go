// Package webhook реализует HTTP-обработчик вебхуков платёжного провайдера.
//
// Подпись запроса проверяется до разбора тела; запросы с неверной подписью
// отклоняются. Обработка идемпотентна: повторная доставка события не
// приводит к повторному начислению кредитов.
package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/summraize/summraize-backend/internal/http/response"
	"github.com/summraize/summraize-backend/internal/lib/sl"
	"github.com/summraize/summraize-backend/internal/services/payment"
)

// maxPayloadSize ограничивает размер тела вебхука (1 МБ).
const maxPayloadSize = 1 << 20

// Service описывает интерфейс обработки вебхуков.
type Service interface {
	VerifySignature(payload []byte, header string) error
	HandleEvent(ctx context.Context, payload []byte) (*payment.Result, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Вебхук платёжного провайдера
// @Description Принимает события checkout.session.completed и зачисляет кредиты.
// @Tags Payments
// @Accept json
// @Produce json
// @Param Webhook-Signature header string true "Подпись t=<unix>,v1=<hex>"
// @Success 200 {object} map[string]any "Событие обработано"
// @Failure 400 {object} response.ErrorResponse "Некорректное событие"
// @Failure 401 {object} response.ErrorResponse "Неверная подпись"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadSize))
	if err != nil {
		log.Error("failed to read webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("could not read request body"))
		return
	}

	signature := r.Header.Get("Webhook-Signature")
	if err := h.service.VerifySignature(payload, signature); err != nil {
		log.Error("webhook signature rejected", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	result, err := h.service.HandleEvent(r.Context(), payload)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid signature"))
			return
		}
		log.Error("failed to handle webhook event", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("could not process event"))
		return
	}

	log.Info("webhook processed",
		slog.String("username", result.Username),
		slog.Bool("credited", result.Credited))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"credited": result.Credited,
	}))
}

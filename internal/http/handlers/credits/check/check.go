// Package check реализует HTTP-обработчик проверки достаточности баланса
// для операции без списания кредитов.
package check

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
)

// Request — проверяемая стоимость операции
type Request struct {
	Required int64 `json:"required" validate:"gte=0"`
}

// Service описывает интерфейс проверки баланса.
type Service interface {
	Check(ctx context.Context, username string, required int64) (int64, error)
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
// @Summary Проверить достаточность баланса
// @Description Проверяет, хватит ли кредитов на операцию. Ничего не списывает.
// @Tags Credits
// @Accept json
// @Produce json
// @Param request body Request true "Требуемая стоимость"
// @Success 200 {object} map[string]any "Баланса достаточно"
// @Failure 402 {object} response.CreditsErrorResponse "Недостаточно кредитов"
// @Security BearerAuth
// @Router /credits/check [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.credits.check"

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

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	balance, err := h.service.Check(r.Context(), username, req.Required)
	if err != nil {
		var insufficientErr *credits.InsufficientCreditsError
		if errors.As(err, &insufficientErr) {
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.InsufficientCredits(insufficientErr.Required, insufficientErr.Available))
			return
		}
		log.Error("failed to check balance", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not check balance"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"sufficient": true,
		"credits":    balance,
	}))
}

// Package payment обрабатывает вебхуки платёжного провайдера:
// проверку подписи, зачисление купленных кредитов и отправку квитанций.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/summraize/summraize-backend/internal/models"
	"github.com/summraize/summraize-backend/internal/rabbitmq"
)

// ErrInvalidSignature возвращается при неверной или устаревшей подписи вебхука.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// signatureTolerance — максимально допустимый возраст подписанного запроса.
const signatureTolerance = 5 * time.Minute

// priceCredits — таблица соответствия тарифов и количества кредитов.
// Неизвестный price_id отклоняется, суммы из тела запроса не принимаются.
var priceCredits = map[string]int64{
	"price_starter":  1000,
	"price_standard": 5000,
	"price_pro":      12000,
}

// CreditsProvider описывает зачисление кредитов за покупку.
type CreditsProvider interface {
	CreditPurchase(ctx context.Context, username, sessionID, priceID string, amount int64) (int64, bool, error)
}

// UserEmails описывает получение почты пользователя для квитанции.
type UserEmails interface {
	GetUserEmail(ctx context.Context, username string) (string, error)
}

// Publisher описывает публикацию сообщений в брокер.
type Publisher interface {
	Publish(exchange, routingkey string, message any) error
}

// PaymentService обрабатывает события платёжного провайдера.
type PaymentService struct {
	secret    string
	credits   CreditsProvider
	users     UserEmails
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
}

// New создает новый экземпляр PaymentService.
func New(secret string, credits CreditsProvider, users UserEmails, publisher Publisher, log *slog.Logger) *PaymentService {
	return &PaymentService{
		secret:    secret,
		credits:   credits,
		users:     users,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// checkoutEvent — тело события checkout.session.completed.
type checkoutEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID                string `json:"id"`
			ClientReferenceID string `json:"client_reference_id"`
			PriceID           string `json:"price_id"`
		} `json:"object"`
	} `json:"data"`
}

// Result — итог обработки вебхука.
type Result struct {
	Username string
	Credits  int64
	Balance  int64
	Credited bool
}

// VerifySignature проверяет подпись вебхука в формате "t=<unix>,v1=<hex>".
// Подпись считается как HMAC-SHA256(secret, "<t>.<payload>").
func (s *PaymentService) VerifySignature(payload []byte, header string) error {
	var timestamp, signature string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signature = value
		}
	}
	if timestamp == "" || signature == "" {
		return ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	age := s.now().Sub(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

// HandleEvent обрабатывает событие вебхука. Зачисление идемпотентно по
// session_id, поэтому повторная доставка безопасна. События других типов
// подтверждаются без обработки.
func (s *PaymentService) HandleEvent(ctx context.Context, payload []byte) (*Result, error) {
	const op = "services.payment.HandleEvent"

	var event checkoutEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if event.Type != "checkout.session.completed" {
		s.log.Info("ignoring webhook event", slog.String("type", event.Type))
		return &Result{}, nil
	}

	session := event.Data.Object
	if session.ID == "" || session.ClientReferenceID == "" {
		return nil, fmt.Errorf("%s: missing session id or client reference", op)
	}

	amount, ok := priceCredits[session.PriceID]
	if !ok {
		return nil, fmt.Errorf("%s: unknown price id %q", op, session.PriceID)
	}

	username := session.ClientReferenceID
	balance, credited, err := s.credits.CreditPurchase(ctx, username, session.ID, session.PriceID, amount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if credited {
		s.publishReceipt(ctx, username, session.ID, session.PriceID, amount, balance)
	}

	return &Result{
		Username: username,
		Credits:  amount,
		Balance:  balance,
		Credited: credited,
	}, nil
}

func (s *PaymentService) publishReceipt(ctx context.Context, username, sessionID, priceID string, amount, balance int64) {
	email, err := s.users.GetUserEmail(ctx, username)
	if err != nil {
		s.log.Error("failed to resolve email for receipt",
			slog.String("username", username), slog.Any("err", err))
		return
	}

	receipt := models.Receipt{
		Username:  username,
		Email:     email,
		SessionID: sessionID,
		PriceID:   priceID,
		Credits:   amount,
		Balance:   balance,
	}
	if err := s.publisher.Publish(rabbitmq.ReceiptsExchange, "purchase", receipt); err != nil {
		s.log.Error("failed to publish receipt message",
			slog.String("username", username), slog.Any("err", err))
	}
}

// Package credits реализует учёт кредитов: проверку баланса,
// атомарное списание и зачисление покупок.
package credits

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/summraize/summraize-backend/internal/metrics"
	"github.com/summraize/summraize-backend/internal/models"
)

// InsufficientCreditsError возвращается, когда баланса не хватает на операцию.
type InsufficientCreditsError struct {
	Required  int64
	Available int64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: required %d, available %d", e.Required, e.Available)
}

// CreditsRepository определяет методы для работы с балансом и журналом операций.
type CreditsRepository interface {
	// GetBalance возвращает текущий баланс пользователя.
	GetBalance(ctx context.Context, username string) (int64, error)
	// DeductCredits атомарно списывает кредиты, если баланса хватает.
	DeductCredits(ctx context.Context, username string, amount int64) (int64, bool, error)
	// AddCreditsWithPurchase зачисляет кредиты идемпотентно по session_id.
	AddCreditsWithPurchase(ctx context.Context, username, sessionID, priceID string, amount int64) (int64, bool, error)
	// CreateOperation записывает выполненную операцию в журнал.
	CreateOperation(ctx context.Context, op models.Operation) error
	// ListOperations возвращает журнал операций пользователя с пагинацией.
	ListOperations(ctx context.Context, username string, limit, offset int) ([]*models.Operation, error)
}

// CreditsService реализует бизнес-логику учёта кредитов.
type CreditsService struct {
	repo CreditsRepository
	log  *slog.Logger
}

// New создает новый экземпляр CreditsService.
func New(repo CreditsRepository, log *slog.Logger) *CreditsService {
	return &CreditsService{repo: repo, log: log}
}

// Balance возвращает текущий баланс пользователя.
func (s *CreditsService) Balance(ctx context.Context, username string) (int64, error) {
	return s.repo.GetBalance(ctx, username)
}

// Check проверяет, хватает ли баланса на операцию стоимостью required,
// ничего не списывая. Возвращает InsufficientCreditsError при нехватке.
func (s *CreditsService) Check(ctx context.Context, username string, required int64) (int64, error) {
	const op = "services.credits.Check"

	balance, err := s.repo.GetBalance(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if balance < required {
		metrics.InsufficientCreditsTotal.Inc()
		return balance, &InsufficientCreditsError{Required: required, Available: balance}
	}
	return balance, nil
}

// Charge атомарно списывает amount кредитов за операцию operationType
// и записывает её в журнал. Списание и проверка баланса выполняются одним
// условным UPDATE, поэтому параллельные операции не могут увести баланс
// в минус. Возвращает остаток после списания.
func (s *CreditsService) Charge(ctx context.Context, username, operationType string, amount int64, detail string) (int64, error) {
	const op = "services.credits.Charge"

	if amount < 0 {
		return 0, fmt.Errorf("%s: negative amount %d", op, amount)
	}

	remaining, ok, err := s.repo.DeductCredits(ctx, username, amount)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		balance, berr := s.repo.GetBalance(ctx, username)
		if berr != nil {
			return 0, fmt.Errorf("%s: %w", op, berr)
		}
		metrics.InsufficientCreditsTotal.Inc()
		return balance, &InsufficientCreditsError{Required: amount, Available: balance}
	}

	entry := models.Operation{
		ID:            uuid.NewString(),
		Username:      username,
		OperationType: operationType,
		Cost:          amount,
		Detail:        detail,
	}
	if err := s.repo.CreateOperation(ctx, entry); err != nil {
		s.log.Error("failed to record operation", slog.String("op", op), slog.Any("err", err))
	}

	metrics.OperationsTotal.WithLabelValues(operationType).Inc()
	metrics.CreditsSpentTotal.WithLabelValues(operationType).Add(float64(amount))

	s.log.Info("charged credits",
		slog.String("username", username),
		slog.String("operation", operationType),
		slog.Int64("amount", amount),
		slog.Int64("remaining", remaining))
	return remaining, nil
}

// CreditPurchase зачисляет купленные кредиты. Повторная доставка того же
// session_id не зачисляет кредиты второй раз. Возвращает итоговый баланс
// и признак, было ли зачисление выполнено.
func (s *CreditsService) CreditPurchase(ctx context.Context, username, sessionID, priceID string, amount int64) (int64, bool, error) {
	const op = "services.credits.CreditPurchase"

	balance, credited, err := s.repo.AddCreditsWithPurchase(ctx, username, sessionID, priceID, amount)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	if !credited {
		s.log.Info("duplicate purchase session, skipping credit",
			slog.String("username", username),
			slog.String("session_id", sessionID))
		return balance, false, nil
	}

	metrics.CreditsPurchasedTotal.Add(float64(amount))
	s.log.Info("credited purchase",
		slog.String("username", username),
		slog.String("session_id", sessionID),
		slog.Int64("amount", amount),
		slog.Int64("balance", balance))
	return balance, true, nil
}

// ListOperations возвращает журнал операций пользователя.
func (s *CreditsService) ListOperations(ctx context.Context, username string, limit, offset int) ([]*models.Operation, error) {
	return s.repo.ListOperations(ctx, username, limit, offset)
}

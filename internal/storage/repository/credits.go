package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/summraize/summraize-backend/internal/models"
)

// GetBalance возвращает текущий баланс кредитов пользователя.
func (s *Storage) GetBalance(ctx context.Context, username string) (int64, error) {
	const op = "storage.GetBalance"

	var credits int64
	query := `SELECT credits FROM users WHERE username = $1`
	if err := s.DB.QueryRowContext(ctx, query, username).Scan(&credits); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return credits, nil
}

// DeductCredits атомарно списывает amount кредитов с баланса пользователя.
// Условие credits >= amount входит в сам UPDATE, поэтому баланс не может
// уйти в минус даже при конкурентных запросах. Возвращает новый баланс и
// признак успеха: false означает, что на балансе не хватило кредитов.
func (s *Storage) DeductCredits(ctx context.Context, username string, amount int64) (int64, bool, error) {
	const op = "storage.DeductCredits"

	var remaining int64
	query := `UPDATE users
			  SET credits = credits - $1
			  WHERE username = $2 AND credits >= $1
			  RETURNING credits`
	err := s.DB.QueryRowContext(ctx, query, amount, username).Scan(&remaining)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	return remaining, true, nil
}

// AddCreditsWithPurchase в одной транзакции записывает покупку и начисляет
// кредиты. Повторная доставка webhook с тем же session_id не приводит к
// повторному начислению: вставка покупки игнорирует дубликаты, и начисление
// выполняется только для новой записи. Возвращает новый баланс и признак
// того, что начисление действительно произошло.
func (s *Storage) AddCreditsWithPurchase(ctx context.Context, username, sessionID, priceID string, amount int64) (int64, bool, error) {
	const op = "storage.AddCreditsWithPurchase"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO purchases (username, session_id, price_id, credits)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id) DO NOTHING`,
		username, sessionID, priceID, amount)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	if inserted == 0 {
		balance, err := s.GetBalance(ctx, username)
		if err != nil {
			return 0, false, fmt.Errorf("%s: %w", op, err)
		}
		return balance, false, nil
	}

	var balance int64
	err = tx.QueryRowContext(ctx, `
		UPDATE users SET credits = credits + $1
		WHERE username = $2
		RETURNING credits`,
		amount, username).Scan(&balance)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	return balance, true, nil
}

// CreateOperation добавляет запись в журнал тарифицируемых операций.
func (s *Storage) CreateOperation(ctx context.Context, operation models.Operation) error {
	const op = "storage.CreateOperation"

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO operations (id, username, operation_type, cost, detail)
		VALUES ($1, $2, $3, $4, $5)`,
		operation.ID, operation.Username, operation.OperationType, operation.Cost, operation.Detail)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListOperations возвращает журнал операций пользователя с пагинацией,
// новые записи первыми.
func (s *Storage) ListOperations(ctx context.Context, username string, limit, offset int) ([]*models.Operation, error) {
	const op = "storage.ListOperations"

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, username, operation_type, cost, detail, created_at
		FROM operations
		WHERE username = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		username, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Operation
	for rows.Next() {
		entry := &models.Operation{}
		if err := rows.Scan(&entry.ID, &entry.Username, &entry.OperationType,
			&entry.Cost, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

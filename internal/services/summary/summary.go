// Package summary реализует резюмирование текста с цепочкой резервных
// провайдеров и списанием кредитов по фактическому расходу токенов.
package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/summraize/summraize-backend/internal/lib/costs"
	"github.com/summraize/summraize-backend/internal/models"
	"github.com/summraize/summraize-backend/internal/providers/chat"
	"github.com/summraize/summraize-backend/internal/services/credits"
)

// Summarizer описывает провайдера резюмирования.
type Summarizer interface {
	Name() string
	Summarize(ctx context.Context, text string) (*chat.Summary, error)
}

// CreditCharger описывает операции учёта кредитов, нужные резюмированию.
type CreditCharger interface {
	Check(ctx context.Context, username string, required int64) (int64, error)
	Charge(ctx context.Context, username, operationType string, amount int64, detail string) (int64, error)
}

// Result — результат резюмирования.
type Result struct {
	Summary      string `json:"summary"`
	Provider     string `json:"provider"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	Cost         int64  `json:"cost"`
	Remaining    int64  `json:"remaining_credits"`
}

// SummaryService реализует резюмирование с fallback между провайдерами.
type SummaryService struct {
	providers []Summarizer
	credits   CreditCharger
	log       *slog.Logger
}

// New создает новый экземпляр SummaryService. Провайдеры опрашиваются
// в порядке перечисления.
func New(providers []Summarizer, credits CreditCharger, log *slog.Logger) *SummaryService {
	return &SummaryService{
		providers: providers,
		credits:   credits,
		log:       log,
	}
}

// Summarize резюмирует текст. Баланс проверяется до вызова провайдера по
// оценке из длины текста, списание выполняется по фактическим токенам из
// ответа провайдера. При отказе провайдера запрос уходит следующему в цепочке.
func (s *SummaryService) Summarize(ctx context.Context, username, text string) (*Result, error) {
	const op = "services.summary.Summarize"

	if len(s.providers) == 0 {
		return nil, fmt.Errorf("%s: no summarization providers configured", op)
	}

	estimated := costs.SummarizationCost(utf8.RuneCountInString(text))
	if _, err := s.credits.Check(ctx, username, estimated); err != nil {
		return nil, err
	}

	result, providerName, err := s.summarizeWithFallback(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cost := costs.SummarizationCostTokens(float64(result.InputTokens), float64(result.OutputTokens))
	detail := fmt.Sprintf("%s: %d in / %d out tokens", providerName, result.InputTokens, result.OutputTokens)
	remaining, err := s.credits.Charge(ctx, username, models.OperationSummarization, cost, detail)
	if err != nil {
		// провайдер уже отработал, но баланс успел уйти ниже стоимости
		var insufficientErr *credits.InsufficientCreditsError
		if errors.As(err, &insufficientErr) {
			s.log.Warn("balance dropped below cost after summarization",
				slog.String("username", username),
				slog.Int64("cost", cost))
		}
		return nil, err
	}

	return &Result{
		Summary:      result.Text,
		Provider:     providerName,
		InputTokens:  result.InputTokens,
		OutputTokens: result.OutputTokens,
		Cost:         cost,
		Remaining:    remaining,
	}, nil
}

func (s *SummaryService) summarizeWithFallback(ctx context.Context, text string) (*chat.Summary, string, error) {
	var lastErr error
	for _, provider := range s.providers {
		result, err := provider.Summarize(ctx, text)
		if err == nil {
			return result, provider.Name(), nil
		}
		s.log.Warn("summarization provider failed, trying next",
			slog.String("provider", provider.Name()),
			slog.Any("err", err))
		lastErr = err
	}
	return nil, "", fmt.Errorf("all providers failed: %w", lastErr)
}

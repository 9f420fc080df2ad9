// Package audio реализует обработку аудио: проверку баланса по заявленной
// длительности, распознавание речи и списание по фактической длительности.
package audio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/summraize/summraize-backend/internal/lib/costs"
	"github.com/summraize/summraize-backend/internal/models"
	"github.com/summraize/summraize-backend/internal/providers/deepgram"
)

// Transcriber описывает провайдера распознавания речи.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (*deepgram.Transcription, error)
}

// CreditCharger описывает операции учёта кредитов, нужные обработке аудио.
type CreditCharger interface {
	// Check проверяет баланс без списания.
	Check(ctx context.Context, username string, required int64) (int64, error)
	// Charge атомарно списывает кредиты и записывает операцию в журнал.
	Charge(ctx context.Context, username, operationType string, amount int64, detail string) (int64, error)
}

// Result — результат обработки аудио.
type Result struct {
	Transcript      string  `json:"transcript"`
	Confidence      float64 `json:"confidence"`
	DurationSeconds float64 `json:"duration_seconds"`
	Cost            int64   `json:"cost"`
	Remaining       int64   `json:"remaining_credits"`
}

// AudioService реализует полный цикл обработки аудио.
type AudioService struct {
	transcriber Transcriber
	credits     CreditCharger
	log         *slog.Logger
}

// New создает новый экземпляр AudioService.
func New(transcriber Transcriber, credits CreditCharger, log *slog.Logger) *AudioService {
	return &AudioService{
		transcriber: transcriber,
		credits:     credits,
		log:         log,
	}
}

// Process распознаёт аудио и списывает кредиты. Баланс проверяется до вызова
// провайдера по заявленной клиентом длительности, списание выполняется по
// фактической длительности из ответа провайдера.
func (s *AudioService) Process(ctx context.Context, username string, audio []byte, contentType string, declaredSeconds float64) (*Result, error) {
	const op = "services.audio.Process"

	estimated := costs.TranscriptionCost(declaredSeconds)
	if _, err := s.credits.Check(ctx, username, estimated); err != nil {
		return nil, err
	}

	transcription, err := s.transcriber.Transcribe(ctx, audio, contentType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cost := costs.TranscriptionCost(transcription.Duration)
	detail := fmt.Sprintf("audio %.1fs", transcription.Duration)
	remaining, err := s.credits.Charge(ctx, username, models.OperationTranscription, cost, detail)
	if err != nil {
		return nil, err
	}

	s.log.Info("processed audio",
		slog.String("username", username),
		slog.Float64("duration", transcription.Duration),
		slog.Int64("cost", cost))

	return &Result{
		Transcript:      transcription.Transcript,
		Confidence:      transcription.Confidence,
		DurationSeconds: transcription.Duration,
		Cost:            cost,
		Remaining:       remaining,
	}, nil
}

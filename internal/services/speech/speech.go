// Package speech реализует синтез речи: выбор уровня качества голоса
// по месячным квотам провайдера и списание кредитов за синтез.
package speech

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/summraize/summraize-backend/internal/lib/costs"
	"github.com/summraize/summraize-backend/internal/models"
)

// Уровни качества голоса в порядке убывания предпочтения.
const (
	TierJourney  = "journey"
	TierWavenet  = "wavenet"
	TierNeural2  = "neural2"
	TierStandard = "standard"
)

// tierQuotas — месячные лимиты бесплатных символов провайдера по уровням.
// Standard — безлимитный запасной уровень.
var tierQuotas = map[string]int64{
	TierJourney: 1_000_000,
	TierWavenet: 1_000_000,
	TierNeural2: 1_000_000,
}

// tierOrder задаёт порядок выбора: от лучшего качества к худшему.
var tierOrder = []string{TierJourney, TierWavenet, TierNeural2, TierStandard}

// tierVoices — конкретный голос провайдера для каждого уровня.
var tierVoices = map[string]string{
	TierJourney:  "en-US-Journey-F",
	TierWavenet:  "en-US-Wavenet-F",
	TierNeural2:  "en-US-Neural2-F",
	TierStandard: "en-US-Standard-C",
}

// Synthesizer описывает провайдера синтеза речи.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceName string) ([]byte, error)
}

// UsageRepository определяет методы для работы с месячными счётчиками уровней.
type UsageRepository interface {
	ListTierUsage(ctx context.Context) ([]*models.TierUsage, error)
	ResetTierUsage(ctx context.Context, month string) error
	AddTierUsage(ctx context.Context, tier string, chars int64) error
}

// CreditCharger описывает операции учёта кредитов, нужные синтезу речи.
type CreditCharger interface {
	Check(ctx context.Context, username string, required int64) (int64, error)
	Charge(ctx context.Context, username, operationType string, amount int64, detail string) (int64, error)
}

// Result — результат синтеза речи.
type Result struct {
	Audio     []byte
	Tier      string
	Voice     string
	Cost      int64
	Remaining int64
}

// SpeechService реализует синтез речи с выбором уровня качества.
type SpeechService struct {
	synthesizer Synthesizer
	usage       UsageRepository
	credits     CreditCharger
	log         *slog.Logger
	now         func() time.Time
}

// New создает новый экземпляр SpeechService.
func New(synthesizer Synthesizer, usage UsageRepository, credits CreditCharger, log *slog.Logger) *SpeechService {
	return &SpeechService{
		synthesizer: synthesizer,
		usage:       usage,
		credits:     credits,
		log:         log,
		now:         time.Now,
	}
}

// Synthesize озвучивает текст лучшим доступным голосом и списывает кредиты.
func (s *SpeechService) Synthesize(ctx context.Context, username, text string) (*Result, error) {
	const op = "services.speech.Synthesize"

	chars := utf8.RuneCountInString(text)
	cost := costs.TTSCost(chars)
	if _, err := s.credits.Check(ctx, username, cost); err != nil {
		return nil, err
	}

	tier, err := s.selectTier(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	voice := tierVoices[tier]

	audio, err := s.synthesizer.Synthesize(ctx, text, voice)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.usage.AddTierUsage(ctx, tier, int64(chars)); err != nil {
		s.log.Error("failed to record tier usage", slog.String("tier", tier), slog.Any("err", err))
	}

	detail := fmt.Sprintf("%d chars, voice %s", chars, voice)
	remaining, err := s.credits.Charge(ctx, username, models.OperationTTS, cost, detail)
	if err != nil {
		return nil, err
	}

	s.log.Info("synthesized speech",
		slog.String("username", username),
		slog.String("tier", tier),
		slog.Int("chars", chars),
		slog.Int64("cost", cost))

	return &Result{
		Audio:     audio,
		Tier:      tier,
		Voice:     voice,
		Cost:      cost,
		Remaining: remaining,
	}, nil
}

// selectTier возвращает лучший уровень, счётчик которого ещё не достиг
// месячной квоты. Запрос может перешагнуть квоту: расход учитывается уже
// после синтеза. При смене календарного месяца счётчики обнуляются.
func (s *SpeechService) selectTier(ctx context.Context) (string, error) {
	currentMonth := s.now().UTC().Format("2006-01")

	usages, err := s.usage.ListTierUsage(ctx)
	if err != nil {
		return "", err
	}

	used := make(map[string]int64, len(usages))
	needsReset := false
	for _, u := range usages {
		if u.ResetMonth != currentMonth {
			needsReset = true
		}
		used[u.Tier] = u.CharsUsed
	}

	if needsReset {
		if err := s.usage.ResetTierUsage(ctx, currentMonth); err != nil {
			return "", err
		}
		used = map[string]int64{}
		s.log.Info("reset voice tier counters", slog.String("month", currentMonth))
	}

	for _, tier := range tierOrder {
		quota, limited := tierQuotas[tier]
		if !limited {
			return tier, nil
		}
		if used[tier] < quota {
			return tier, nil
		}
	}
	return TierStandard, nil
}

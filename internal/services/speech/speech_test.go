package speech

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summraize/summraize-backend/internal/models"
)

type mockSynthesizer struct {
	synthesizeFunc func(ctx context.Context, text, voiceName string) ([]byte, error)
}

func (m *mockSynthesizer) Synthesize(ctx context.Context, text, voiceName string) ([]byte, error) {
	return m.synthesizeFunc(ctx, text, voiceName)
}

type mockUsageRepo struct {
	usages    []*models.TierUsage
	resetWith string
	added     map[string]int64
}

func (m *mockUsageRepo) ListTierUsage(_ context.Context) ([]*models.TierUsage, error) {
	return m.usages, nil
}

func (m *mockUsageRepo) ResetTierUsage(_ context.Context, month string) error {
	m.resetWith = month
	for _, u := range m.usages {
		u.CharsUsed = 0
		u.ResetMonth = month
	}
	return nil
}

func (m *mockUsageRepo) AddTierUsage(_ context.Context, tier string, chars int64) error {
	if m.added == nil {
		m.added = map[string]int64{}
	}
	m.added[tier] += chars
	return nil
}

type mockCharger struct {
	checkFunc  func(ctx context.Context, username string, required int64) (int64, error)
	chargeFunc func(ctx context.Context, username, operationType string, amount int64, detail string) (int64, error)
}

func (m *mockCharger) Check(ctx context.Context, username string, required int64) (int64, error) {
	return m.checkFunc(ctx, username, required)
}

func (m *mockCharger) Charge(ctx context.Context, username, operationType string, amount int64, detail string) (int64, error) {
	return m.chargeFunc(ctx, username, operationType, amount, detail)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okCharger() *mockCharger {
	return &mockCharger{
		checkFunc: func(_ context.Context, _ string, _ int64) (int64, error) { return 1000, nil },
		chargeFunc: func(_ context.Context, _ string, _ string, _ int64, _ string) (int64, error) {
			return 956, nil
		},
	}
}

func usagesFor(month string, used map[string]int64) []*models.TierUsage {
	var result []*models.TierUsage
	for _, tier := range []string{TierJourney, TierWavenet, TierNeural2, TierStandard} {
		result = append(result, &models.TierUsage{
			Tier:       tier,
			CharsUsed:  used[tier],
			ResetMonth: month,
		})
	}
	return result
}

func newService(repo *mockUsageRepo, charger *mockCharger, now time.Time) (*SpeechService, *string) {
	var usedVoice string
	synth := &mockSynthesizer{
		synthesizeFunc: func(_ context.Context, _, voiceName string) ([]byte, error) {
			usedVoice = voiceName
			return []byte("mp3-bytes"), nil
		},
	}
	svc := New(synth, repo, charger, newTestLogger())
	svc.now = func() time.Time { return now }
	return svc, &usedVoice
}

func TestSynthesize(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	month := "2025-03"
	text := strings.Repeat("a", 1000)

	t.Run("prefers journey when quota available", func(t *testing.T) {
		repo := &mockUsageRepo{usages: usagesFor(month, nil)}
		svc, voice := newService(repo, okCharger(), now)

		res, err := svc.Synthesize(context.Background(), "alice", text)
		require.NoError(t, err)
		assert.Equal(t, TierJourney, res.Tier)
		assert.Equal(t, "en-US-Journey-F", *voice)
		// 1000 chars -> +10% -> 1100 -> 44 credits
		assert.EqualValues(t, 44, res.Cost)
		assert.EqualValues(t, 1000, repo.added[TierJourney])
	})

	t.Run("falls through exhausted tiers", func(t *testing.T) {
		repo := &mockUsageRepo{usages: usagesFor(month, map[string]int64{
			TierJourney: 1_000_000,
			TierWavenet: 1_000_000,
		})}
		svc, voice := newService(repo, okCharger(), now)

		res, err := svc.Synthesize(context.Background(), "alice", text)
		require.NoError(t, err)
		assert.Equal(t, TierNeural2, res.Tier)
		assert.Equal(t, "en-US-Neural2-F", *voice)
	})

	t.Run("tier below quota accepted even without headroom", func(t *testing.T) {
		repo := &mockUsageRepo{usages: usagesFor(month, map[string]int64{
			TierJourney: 999_999,
		})}
		svc, _ := newService(repo, okCharger(), now)

		// счётчик ещё не достиг квоты, запрос может её перешагнуть
		res, err := svc.Synthesize(context.Background(), "alice", text)
		require.NoError(t, err)
		assert.Equal(t, TierJourney, res.Tier)
		assert.EqualValues(t, 1000, repo.added[TierJourney])
	})

	t.Run("standard is unlimited fallback", func(t *testing.T) {
		repo := &mockUsageRepo{usages: usagesFor(month, map[string]int64{
			TierJourney:  1_000_000,
			TierWavenet:  1_000_000,
			TierNeural2:  1_000_000,
			TierStandard: 5_000_000,
		})}
		svc, _ := newService(repo, okCharger(), now)

		res, err := svc.Synthesize(context.Background(), "alice", text)
		require.NoError(t, err)
		assert.Equal(t, TierStandard, res.Tier)
	})

	t.Run("month rollover resets counters", func(t *testing.T) {
		repo := &mockUsageRepo{usages: usagesFor("2025-02", map[string]int64{
			TierJourney: 1_000_000,
		})}
		svc, _ := newService(repo, okCharger(), now)

		res, err := svc.Synthesize(context.Background(), "alice", text)
		require.NoError(t, err)
		assert.Equal(t, "2025-03", repo.resetWith)
		assert.Equal(t, TierJourney, res.Tier)
	})

	t.Run("multibyte text billed by characters", func(t *testing.T) {
		repo := &mockUsageRepo{usages: usagesFor(month, nil)}
		var checked int64
		charger := okCharger()
		charger.checkFunc = func(_ context.Context, _ string, required int64) (int64, error) {
			checked = required
			return 1000, nil
		}
		svc, _ := newService(repo, charger, now)

		// 1000 кириллических символов занимают 2000 байт
		res, err := svc.Synthesize(context.Background(), "alice", strings.Repeat("ж", 1000))
		require.NoError(t, err)
		assert.EqualValues(t, 44, res.Cost)
		assert.EqualValues(t, 44, checked)
		assert.EqualValues(t, 1000, repo.added[TierJourney])
	})

	t.Run("insufficient balance blocks synthesis", func(t *testing.T) {
		repo := &mockUsageRepo{usages: usagesFor(month, nil)}
		charger := &mockCharger{
			checkFunc: func(_ context.Context, _ string, _ int64) (int64, error) {
				return 0, errors.New("insufficient credits")
			},
		}
		svc, _ := newService(repo, charger, now)

		_, err := svc.Synthesize(context.Background(), "alice", text)
		assert.Error(t, err)
		assert.Empty(t, repo.added)
	})

	t.Run("provider error", func(t *testing.T) {
		repo := &mockUsageRepo{usages: usagesFor(month, nil)}
		synth := &mockSynthesizer{
			synthesizeFunc: func(_ context.Context, _, _ string) ([]byte, error) {
				return nil, errors.New("provider unavailable")
			},
		}
		svc := New(synth, repo, okCharger(), newTestLogger())
		svc.now = func() time.Time { return now }

		_, err := svc.Synthesize(context.Background(), "alice", text)
		assert.Error(t, err)
	})
}

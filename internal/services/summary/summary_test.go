package summary

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summraize/summraize-backend/internal/providers/chat"
)

type mockSummarizer struct {
	name          string
	summarizeFunc func(ctx context.Context, text string) (*chat.Summary, error)
}

func (m *mockSummarizer) Name() string { return m.name }

func (m *mockSummarizer) Summarize(ctx context.Context, text string) (*chat.Summary, error) {
	return m.summarizeFunc(ctx, text)
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

func okCharger(remaining int64, chargedAmount *int64) *mockCharger {
	return &mockCharger{
		checkFunc: func(_ context.Context, _ string, _ int64) (int64, error) { return 1000, nil },
		chargeFunc: func(_ context.Context, _ string, _ string, amount int64, _ string) (int64, error) {
			if chargedAmount != nil {
				*chargedAmount = amount
			}
			return remaining, nil
		},
	}
}

func TestSummarize(t *testing.T) {
	text := strings.Repeat("a", 4000)

	t.Run("primary provider succeeds", func(t *testing.T) {
		var charged int64
		primary := &mockSummarizer{
			name: "openai",
			summarizeFunc: func(_ context.Context, _ string) (*chat.Summary, error) {
				return &chat.Summary{Text: "short summary", InputTokens: 1000, OutputTokens: 200}, nil
			},
		}
		svc := New([]Summarizer{primary}, okCharger(958, &charged), newTestLogger())

		res, err := svc.Summarize(context.Background(), "alice", text)
		require.NoError(t, err)
		assert.Equal(t, "short summary", res.Summary)
		assert.Equal(t, "openai", res.Provider)
		// 1000*30/1000 + 200*60/1000 = 30 + 12 = 42
		assert.EqualValues(t, 42, res.Cost)
		assert.EqualValues(t, 42, charged)
		assert.EqualValues(t, 958, res.Remaining)
	})

	t.Run("falls back to secondary provider", func(t *testing.T) {
		primary := &mockSummarizer{
			name: "openai",
			summarizeFunc: func(_ context.Context, _ string) (*chat.Summary, error) {
				return nil, errors.New("rate limited")
			},
		}
		secondary := &mockSummarizer{
			name: "deepseek",
			summarizeFunc: func(_ context.Context, _ string) (*chat.Summary, error) {
				return &chat.Summary{Text: "fallback summary", InputTokens: 1000, OutputTokens: 100}, nil
			},
		}
		svc := New([]Summarizer{primary, secondary}, okCharger(964, nil), newTestLogger())

		res, err := svc.Summarize(context.Background(), "alice", text)
		require.NoError(t, err)
		assert.Equal(t, "deepseek", res.Provider)
		assert.Equal(t, "fallback summary", res.Summary)
	})

	t.Run("all providers fail", func(t *testing.T) {
		failing := &mockSummarizer{
			name: "openai",
			summarizeFunc: func(_ context.Context, _ string) (*chat.Summary, error) {
				return nil, errors.New("unavailable")
			},
		}
		svc := New([]Summarizer{failing, failing}, okCharger(0, nil), newTestLogger())

		_, err := svc.Summarize(context.Background(), "alice", text)
		assert.Error(t, err)
	})

	t.Run("insufficient balance blocks provider call", func(t *testing.T) {
		providerCalled := false
		primary := &mockSummarizer{
			name: "openai",
			summarizeFunc: func(_ context.Context, _ string) (*chat.Summary, error) {
				providerCalled = true
				return nil, nil
			},
		}
		charger := &mockCharger{
			checkFunc: func(_ context.Context, _ string, _ int64) (int64, error) {
				return 0, errors.New("insufficient credits")
			},
		}
		svc := New([]Summarizer{primary}, charger, newTestLogger())

		_, err := svc.Summarize(context.Background(), "alice", text)
		assert.Error(t, err)
		assert.False(t, providerCalled)
	})

	t.Run("no providers configured", func(t *testing.T) {
		svc := New(nil, okCharger(0, nil), newTestLogger())

		_, err := svc.Summarize(context.Background(), "alice", text)
		assert.Error(t, err)
	})
}

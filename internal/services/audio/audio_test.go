package audio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summraize/summraize-backend/internal/models"
	"github.com/summraize/summraize-backend/internal/providers/deepgram"
)

type mockTranscriber struct {
	transcribeFunc func(ctx context.Context, audio []byte, contentType string) (*deepgram.Transcription, error)
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audio []byte, contentType string) (*deepgram.Transcription, error) {
	return m.transcribeFunc(ctx, audio, contentType)
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

func TestProcess(t *testing.T) {
	t.Run("charges by actual duration", func(t *testing.T) {
		var checkedAmount, chargedAmount int64
		var chargedType string
		transcriber := &mockTranscriber{
			transcribeFunc: func(_ context.Context, _ []byte, _ string) (*deepgram.Transcription, error) {
				return &deepgram.Transcription{Transcript: "hello world", Confidence: 0.98, Duration: 95}, nil
			},
		}
		charger := &mockCharger{
			checkFunc: func(_ context.Context, _ string, required int64) (int64, error) {
				checkedAmount = required
				return 100, nil
			},
			chargeFunc: func(_ context.Context, _ string, operationType string, amount int64, _ string) (int64, error) {
				chargedType = operationType
				chargedAmount = amount
				return 90, nil
			},
		}
		svc := New(transcriber, charger, newTestLogger())

		// клиент заявил 60 секунд, провайдер вернул 95
		res, err := svc.Process(context.Background(), "alice", []byte("audio"), "audio/wav", 60)
		require.NoError(t, err)
		assert.EqualValues(t, 6, checkedAmount)
		assert.EqualValues(t, 10, chargedAmount)
		assert.Equal(t, models.OperationTranscription, chargedType)
		assert.Equal(t, "hello world", res.Transcript)
		assert.EqualValues(t, 10, res.Cost)
		assert.EqualValues(t, 90, res.Remaining)
	})

	t.Run("insufficient balance blocks provider call", func(t *testing.T) {
		providerCalled := false
		transcriber := &mockTranscriber{
			transcribeFunc: func(_ context.Context, _ []byte, _ string) (*deepgram.Transcription, error) {
				providerCalled = true
				return nil, nil
			},
		}
		charger := &mockCharger{
			checkFunc: func(_ context.Context, _ string, _ int64) (int64, error) {
				return 0, errors.New("insufficient credits")
			},
		}
		svc := New(transcriber, charger, newTestLogger())

		_, err := svc.Process(context.Background(), "alice", []byte("audio"), "audio/wav", 60)
		assert.Error(t, err)
		assert.False(t, providerCalled)
	})

	t.Run("provider error", func(t *testing.T) {
		transcriber := &mockTranscriber{
			transcribeFunc: func(_ context.Context, _ []byte, _ string) (*deepgram.Transcription, error) {
				return nil, errors.New("provider unavailable")
			},
		}
		charger := &mockCharger{
			checkFunc: func(_ context.Context, _ string, _ int64) (int64, error) { return 100, nil },
		}
		svc := New(transcriber, charger, newTestLogger())

		_, err := svc.Process(context.Background(), "alice", []byte("audio"), "audio/wav", 60)
		assert.Error(t, err)
	})
}

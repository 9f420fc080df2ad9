package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCredits struct {
	creditFunc func(ctx context.Context, username, sessionID, priceID string, amount int64) (int64, bool, error)
}

func (m *mockCredits) CreditPurchase(ctx context.Context, username, sessionID, priceID string, amount int64) (int64, bool, error) {
	return m.creditFunc(ctx, username, sessionID, priceID, amount)
}

type mockUsers struct {
	emailFunc func(ctx context.Context, username string) (string, error)
}

func (m *mockUsers) GetUserEmail(ctx context.Context, username string) (string, error) {
	return m.emailFunc(ctx, username)
}

type mockPublisher struct {
	published []any
	err       error
}

func (m *mockPublisher) Publish(_, _ string, message any) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, message)
	return nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signPayload(secret string, payload []byte, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifySignature(t *testing.T) {
	const secret = "whsec_test"
	now := time.Unix(1700000000, 0)
	payload := []byte(`{"type":"checkout.session.completed"}`)

	newService := func() *PaymentService {
		svc := New(secret, nil, nil, nil, newTestLogger())
		svc.now = func() time.Time { return now }
		return svc
	}

	t.Run("valid signature", func(t *testing.T) {
		svc := newService()
		header := signPayload(secret, payload, now.Unix())
		assert.NoError(t, svc.VerifySignature(payload, header))
	})

	t.Run("wrong secret", func(t *testing.T) {
		svc := newService()
		header := signPayload("whsec_other", payload, now.Unix())
		assert.ErrorIs(t, svc.VerifySignature(payload, header), ErrInvalidSignature)
	})

	t.Run("tampered payload", func(t *testing.T) {
		svc := newService()
		header := signPayload(secret, payload, now.Unix())
		assert.ErrorIs(t, svc.VerifySignature([]byte(`{"type":"other"}`), header), ErrInvalidSignature)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		svc := newService()
		header := signPayload(secret, payload, now.Add(-10*time.Minute).Unix())
		assert.ErrorIs(t, svc.VerifySignature(payload, header), ErrInvalidSignature)
	})

	t.Run("malformed header", func(t *testing.T) {
		svc := newService()
		assert.ErrorIs(t, svc.VerifySignature(payload, "garbage"), ErrInvalidSignature)
	})
}

func TestHandleEvent(t *testing.T) {
	completedEvent := []byte(`{
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_1", "client_reference_id": "alice", "price_id": "price_starter"}}
	}`)

	t.Run("credits purchase and publishes receipt", func(t *testing.T) {
		var gotAmount int64
		credits := &mockCredits{
			creditFunc: func(_ context.Context, username, sessionID, priceID string, amount int64) (int64, bool, error) {
				assert.Equal(t, "alice", username)
				assert.Equal(t, "cs_1", sessionID)
				assert.Equal(t, "price_starter", priceID)
				gotAmount = amount
				return 1100, true, nil
			},
		}
		users := &mockUsers{
			emailFunc: func(_ context.Context, _ string) (string, error) { return "alice@example.com", nil },
		}
		publisher := &mockPublisher{}
		svc := New("whsec_test", credits, users, publisher, newTestLogger())

		res, err := svc.HandleEvent(context.Background(), completedEvent)
		require.NoError(t, err)
		assert.EqualValues(t, 1000, gotAmount)
		assert.True(t, res.Credited)
		assert.EqualValues(t, 1100, res.Balance)
		assert.Len(t, publisher.published, 1)
	})

	t.Run("duplicate session skips receipt", func(t *testing.T) {
		credits := &mockCredits{
			creditFunc: func(_ context.Context, _, _, _ string, _ int64) (int64, bool, error) {
				return 1100, false, nil
			},
		}
		publisher := &mockPublisher{}
		svc := New("whsec_test", credits, &mockUsers{}, publisher, newTestLogger())

		res, err := svc.HandleEvent(context.Background(), completedEvent)
		require.NoError(t, err)
		assert.False(t, res.Credited)
		assert.Empty(t, publisher.published)
	})

	t.Run("unknown price id rejected", func(t *testing.T) {
		event := []byte(`{
			"type": "checkout.session.completed",
			"data": {"object": {"id": "cs_2", "client_reference_id": "alice", "price_id": "price_bogus"}}
		}`)
		svc := New("whsec_test", &mockCredits{}, &mockUsers{}, &mockPublisher{}, newTestLogger())

		_, err := svc.HandleEvent(context.Background(), event)
		assert.Error(t, err)
	})

	t.Run("other event types acknowledged", func(t *testing.T) {
		event := []byte(`{"type": "invoice.paid"}`)
		svc := New("whsec_test", &mockCredits{}, &mockUsers{}, &mockPublisher{}, newTestLogger())

		res, err := svc.HandleEvent(context.Background(), event)
		require.NoError(t, err)
		assert.False(t, res.Credited)
	})

	t.Run("missing session id rejected", func(t *testing.T) {
		event := []byte(`{
			"type": "checkout.session.completed",
			"data": {"object": {"price_id": "price_starter"}}
		}`)
		svc := New("whsec_test", &mockCredits{}, &mockUsers{}, &mockPublisher{}, newTestLogger())

		_, err := svc.HandleEvent(context.Background(), event)
		assert.Error(t, err)
	})

	t.Run("credit error propagates", func(t *testing.T) {
		credits := &mockCredits{
			creditFunc: func(_ context.Context, _, _, _ string, _ int64) (int64, bool, error) {
				return 0, false, errors.New("storage down")
			},
		}
		svc := New("whsec_test", credits, &mockUsers{}, &mockPublisher{}, newTestLogger())

		_, err := svc.HandleEvent(context.Background(), completedEvent)
		assert.Error(t, err)
	})
}

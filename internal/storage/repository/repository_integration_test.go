package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summraize/summraize-backend/internal/models"
)

func TestStorage_DeductCredits(t *testing.T) {
	ctx := context.Background()
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	createTestUser(t, storage, "alice", 100)

	t.Run("successful deduction", func(t *testing.T) {
		remaining, ok, err := storage.DeductCredits(ctx, "alice", 40)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.EqualValues(t, 60, remaining)
	})

	t.Run("deduction to exactly zero", func(t *testing.T) {
		remaining, ok, err := storage.DeductCredits(ctx, "alice", 60)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.EqualValues(t, 0, remaining)
	})

	t.Run("insufficient balance refused", func(t *testing.T) {
		_, ok, err := storage.DeductCredits(ctx, "alice", 1)
		require.NoError(t, err)
		assert.False(t, ok)

		balance, err := storage.GetBalance(ctx, "alice")
		require.NoError(t, err)
		assert.EqualValues(t, 0, balance)
	})

	t.Run("unknown user refused", func(t *testing.T) {
		_, ok, err := storage.DeductCredits(ctx, "nobody", 1)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

// Параллельные списания не должны уводить баланс в минус: при балансе 100
// и десяти конкурентных списаниях по 30 пройти могут максимум три.
func TestStorage_DeductCredits_Concurrent(t *testing.T) {
	ctx := context.Background()
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	createTestUser(t, storage, "bob", 100)

	const workers = 10
	var wg sync.WaitGroup
	results := make(chan bool, workers)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := storage.DeductCredits(ctx, "bob", 30)
			require.NoError(t, err)
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for ok := range results {
		if ok {
			succeeded++
		}
	}
	assert.Equal(t, 3, succeeded)

	balance, err := storage.GetBalance(ctx, "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 10, balance)
}

func TestStorage_AddCreditsWithPurchase(t *testing.T) {
	ctx := context.Background()
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	createTestUser(t, storage, "alice", 100)

	t.Run("first delivery credits", func(t *testing.T) {
		balance, credited, err := storage.AddCreditsWithPurchase(ctx, "alice", "cs_1", "price_starter", 1000)
		require.NoError(t, err)
		assert.True(t, credited)
		assert.EqualValues(t, 1100, balance)
	})

	t.Run("duplicate delivery is idempotent", func(t *testing.T) {
		balance, credited, err := storage.AddCreditsWithPurchase(ctx, "alice", "cs_1", "price_starter", 1000)
		require.NoError(t, err)
		assert.False(t, credited)
		assert.EqualValues(t, 1100, balance)
	})

	t.Run("new session credits again", func(t *testing.T) {
		balance, credited, err := storage.AddCreditsWithPurchase(ctx, "alice", "cs_2", "price_standard", 5000)
		require.NoError(t, err)
		assert.True(t, credited)
		assert.EqualValues(t, 6100, balance)
	})
}

func TestStorage_Operations(t *testing.T) {
	ctx := context.Background()
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	createTestUser(t, storage, "alice", 100)

	for i := range 3 {
		err := storage.CreateOperation(ctx, models.Operation{
			ID:            uuid.NewString(),
			Username:      "alice",
			OperationType: models.OperationTranscription,
			Cost:          int64(i + 1),
			Detail:        fmt.Sprintf("audio %d", i),
		})
		require.NoError(t, err)
	}

	entries, err := storage.ListOperations(ctx, "alice", 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	paged, err := storage.ListOperations(ctx, "alice", 2, 0)
	require.NoError(t, err)
	assert.Len(t, paged, 2)
}

func TestStorage_VoiceTierUsage(t *testing.T) {
	ctx := context.Background()
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	usages, err := storage.ListTierUsage(ctx)
	require.NoError(t, err)
	assert.Len(t, usages, 4)

	err = storage.AddTierUsage(ctx, "journey", 500)
	require.NoError(t, err)

	usages, err = storage.ListTierUsage(ctx)
	require.NoError(t, err)
	for _, u := range usages {
		if u.Tier == "journey" {
			assert.EqualValues(t, 500, u.CharsUsed)
		}
	}

	err = storage.ResetTierUsage(ctx, "2025-04")
	require.NoError(t, err)

	usages, err = storage.ListTierUsage(ctx)
	require.NoError(t, err)
	for _, u := range usages {
		assert.EqualValues(t, 0, u.CharsUsed)
		assert.Equal(t, "2025-04", u.ResetMonth)
	}
}

func TestStorage_BlogPosts(t *testing.T) {
	ctx := context.Background()
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	post := models.Post{
		Title:     "Hello World",
		Slug:      "hello-world-1",
		Content:   "body",
		Author:    "alice",
		Published: true,
	}
	id, err := storage.CreatePost(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	draft := models.Post{
		Title:   "Draft",
		Slug:    "draft-1",
		Content: "wip",
	}
	_, err = storage.CreatePost(ctx, draft)
	require.NoError(t, err)

	t.Run("read by slug", func(t *testing.T) {
		got, err := storage.GetPostBySlug(ctx, "hello-world-1")
		require.NoError(t, err)
		assert.Equal(t, "Hello World", got.Title)
		assert.Equal(t, id, got.ID)
	})

	t.Run("slug by id", func(t *testing.T) {
		got, err := storage.GetPostSlugByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "hello-world-1", got)

		_, err = storage.GetPostSlugByID(ctx, 9999)
		assert.Error(t, err)
	})

	t.Run("published filter hides drafts", func(t *testing.T) {
		published, err := storage.ListPosts(ctx, true, 10, 0)
		require.NoError(t, err)
		assert.Len(t, published, 1)

		all, err := storage.ListPosts(ctx, false, 10, 0)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("update", func(t *testing.T) {
		count, err := storage.UpdatePost(ctx, models.Post{
			Title:   "Hello Again",
			Content: "new body",
		}, id)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		got, err := storage.GetPostBySlug(ctx, "hello-world-1")
		require.NoError(t, err)
		assert.Equal(t, "Hello Again", got.Title)
	})

	t.Run("remove", func(t *testing.T) {
		count, err := storage.RemovePost(ctx, id)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		_, err = storage.GetPostBySlug(ctx, "hello-world-1")
		assert.Error(t, err)
	})
}

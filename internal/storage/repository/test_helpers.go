package repository

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testSchema = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE users (
    uid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email TEXT NOT NULL UNIQUE,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'user',
    credits BIGINT NOT NULL DEFAULT 0 CHECK (credits >= 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE operations (
    id UUID PRIMARY KEY,
    username TEXT NOT NULL REFERENCES users(username),
    operation_type TEXT NOT NULL,
    cost BIGINT NOT NULL,
    detail TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE purchases (
    id SERIAL PRIMARY KEY,
    username TEXT NOT NULL REFERENCES users(username),
    session_id TEXT NOT NULL UNIQUE,
    price_id TEXT NOT NULL,
    credits BIGINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE voice_tier_usage (
    tier TEXT PRIMARY KEY,
    chars_used BIGINT NOT NULL DEFAULT 0,
    reset_month TEXT NOT NULL DEFAULT to_char(now(), 'YYYY-MM')
);

INSERT INTO voice_tier_usage (tier) VALUES
    ('journey'), ('wavenet'), ('neural2'), ('standard');

CREATE TABLE blog_posts (
    id SERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    content TEXT NOT NULL,
    excerpt TEXT NOT NULL DEFAULT '',
    cover_image TEXT NOT NULL DEFAULT '',
    cover_caption TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL DEFAULT '',
    published BOOLEAN NOT NULL DEFAULT false,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет схему.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort(nat.Port("5432/tcp")),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(3*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			if err = storage.DB.Ping(); err == nil {
				break
			}
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	_, err = storage.DB.Exec(testSchema)
	require.NoError(t, err, "failed to apply schema")

	cleanup := func() {
		storage.DB.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return storage, cleanup
}

// createTestUser создает пользователя с заданным балансом.
func createTestUser(t *testing.T, storage *Storage, username string, credits int64) {
	t.Helper()
	_, err := storage.DB.Exec(`
		INSERT INTO users (email, username, password_hash, role, credits)
		VALUES ($1, $2, 'hashedpassword', 'user', $3)`,
		username+"@example.com", username, credits)
	require.NoError(t, err)
}

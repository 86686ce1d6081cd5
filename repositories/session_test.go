package repositories

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"task-bot/domain"
)

// SetupTestDB initializes a temporary Badger instance for testing
func SetupTestDB(t *testing.T) (*badger.DB, func()) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)

	return db, func() {
		db.Close()
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestSessionRepository_GetReturnsIdleDefaultWhenAbsent(t *testing.T) {
	req := require.New(t)
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	repo := NewSessionRepository(db, "main", testLogger())

	state, err := repo.Get(context.Background(), 12345)
	req.NoError(err)
	req.Equal(domain.ChatID(12345), state.ChatID)
	req.True(state.IsIdle())
	req.Empty(state.Scratch)
}

func TestSessionRepository_SetGetClearRoundTrip(t *testing.T) {
	req := require.New(t)
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewSessionRepository(db, "main", testLogger())

	state := domain.NewConversationState(42).
		With(domain.StepAwaitingPassword, domain.ScratchUsername, "alice")
	req.NoError(repo.Set(ctx, state))

	got, err := repo.Get(ctx, 42)
	req.NoError(err)
	req.Equal(domain.StepAwaitingPassword, got.CurrentStep)
	req.Equal("alice", got.Scratch[domain.ScratchUsername])
	req.False(got.UpdatedAt.IsZero())

	req.NoError(repo.Clear(ctx, 42))

	got, err = repo.Get(ctx, 42)
	req.NoError(err)
	req.True(got.IsIdle())

	// Clear twice: idempotent, no error on a missing record.
	req.NoError(repo.Clear(ctx, 42))
}

func TestSessionRepository_NamespacesDoNotCrossTalk(t *testing.T) {
	req := require.New(t)
	db, cleanup := SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	first := NewSessionRepository(db, "bot-a", testLogger())
	second := NewSessionRepository(db, "bot-b", testLogger())

	req.NoError(first.Set(ctx, domain.NewConversationState(7).
		With(domain.StepAwaitingUsername, "", "")))

	got, err := second.Get(ctx, 7)
	req.NoError(err)
	req.True(got.IsIdle(), "a namespace must never see another namespace's state")
}

func TestSessionRepository_StateSurvivesReopen(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "badger")

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	req.NoError(err)

	repo := NewSessionRepository(db, "main", testLogger())
	req.NoError(repo.Set(ctx, domain.NewConversationState(99).
		With(domain.StepAwaitingUsername, "", "")))
	req.NoError(db.Close())

	db, err = badger.Open(opts)
	req.NoError(err)
	defer db.Close()

	repo = NewSessionRepository(db, "main", testLogger())
	got, err := repo.Get(ctx, 99)
	req.NoError(err)
	req.Equal(domain.StepAwaitingUsername, got.CurrentStep)
}

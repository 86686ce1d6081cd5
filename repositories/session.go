//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../mocks/mock_session_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"task-bot/domain"
	"task-bot/errors"
)

// ISessionRepository is the durable per-user conversation state store.
// Get returns the Idle default when no record exists. Set is a full-state
// overwrite of a single key; Clear is idempotent.
type ISessionRepository interface {
	Get(ctx context.Context, chatID domain.ChatID) (domain.ConversationState, error)
	Set(ctx context.Context, state domain.ConversationState) error
	Clear(ctx context.Context, chatID domain.ChatID) error
}

// SessionRepository stores ConversationState as JSON documents in BadgerDB.
// The namespace keeps several bot instances apart inside a shared database.
type SessionRepository struct {
	db        *badger.DB
	namespace string
	log       *slog.Logger
}

func NewSessionRepository(db *badger.DB, namespace string, log *slog.Logger) *SessionRepository {
	return &SessionRepository{db: db, namespace: namespace, log: log}
}

func (r *SessionRepository) key(chatID domain.ChatID) []byte {
	return []byte(fmt.Sprintf("fsm:%s:%d", r.namespace, chatID))
}

func (r *SessionRepository) Get(_ context.Context, chatID domain.ChatID) (domain.ConversationState, error) {
	state := domain.NewConversationState(chatID)

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(r.key(chatID))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &state)
		})
	})

	if goerrors.Is(err, badger.ErrKeyNotFound) {
		// No record is a valid answer: the user is Idle.
		return domain.NewConversationState(chatID), nil
	}
	if err != nil {
		return domain.ConversationState{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	if state.Scratch == nil {
		state.Scratch = map[string]string{}
	}
	return state, nil
}

func (r *SessionRepository) Set(_ context.Context, state domain.ConversationState) error {
	state.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(r.key(state.ChatID), data)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}

	r.log.Debug("session state persisted", "chat_id", state.ChatID, "step", state.CurrentStep)
	return nil
}

func (r *SessionRepository) Clear(_ context.Context, chatID domain.ChatID) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		// Delete is a no-op on an absent key, which makes Clear idempotent.
		return txn.Delete(r.key(chatID))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}

	r.log.Debug("session state cleared", "chat_id", chatID)
	return nil
}

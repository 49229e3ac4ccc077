package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"demochat/chat-widget/internal/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const DefaultStorageKey = "demoChatMessages"

// LocalStore keeps the whole conversation as one JSON array under a single
// key of an embedded Badger database.
type LocalStore struct {
	db     *badger.DB
	key    []byte
	logger *logrus.Logger
}

func NewLocalStore(db *badger.DB, key string, logger *logrus.Logger) *LocalStore {
	if key == "" {
		key = DefaultStorageKey
	}
	return &LocalStore{db: db, key: []byte(key), logger: logger}
}

// OpenBadger opens the database backing a LocalStore.
func OpenBadger(path string) (*badger.DB, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return db, nil
}

// Load never fails: a missing key, an unreadable value or malformed JSON all
// read as an empty conversation.
func (s *LocalStore) Load(_ context.Context) ([]models.Message, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key)
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			s.logger.WithError(err).Debug("Local storage unreadable, starting empty")
		}
		return []models.Message{}, nil
	}

	var messages []models.Message
	if err := json.Unmarshal(raw, &messages); err != nil || messages == nil {
		s.logger.WithField("key", string(s.key)).Debug("Local storage value malformed, starting empty")
		return []models.Message{}, nil
	}
	return messages, nil
}

// Save replaces the stored sequence.
func (s *LocalStore) Save(_ context.Context, messages []models.Message) error {
	if messages == nil {
		messages = []models.Message{}
	}
	raw, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key, raw)
	})
}

func (s *LocalStore) Insert(ctx context.Context, msg models.Message) error {
	messages, _ := s.Load(ctx)
	return s.Save(ctx, append(messages, msg))
}

func (s *LocalStore) Delete(ctx context.Context, id string) error {
	messages, _ := s.Load(ctx)
	kept := lo.Filter(messages, func(m models.Message, _ int) bool {
		return m.ID != id
	})
	if len(kept) == len(messages) {
		return nil
	}
	return s.Save(ctx, kept)
}


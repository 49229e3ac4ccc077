package repository

import (
	"context"
	"testing"

	"demochat/chat-widget/internal/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	db, err := OpenBadger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewLocalStore(db, "", logrus.New())
}

func sampleMessages() []models.Message {
	return []models.Message{
		{ID: "msg-1", ChatID: "chat", SenderID: "user1", Content: "hello", SentAt: "2024-05-01T10:00:00.000Z", UpdatedAt: "2024-05-01T10:00:00.000Z"},
		{ID: "msg-2", ChatID: "chat", SenderID: "user2", Content: "hi", SentAt: "2024-05-01T10:01:00.000Z", UpdatedAt: "2024-05-01T10:01:00.000Z"},
		{ID: "msg-3", ChatID: "chat", SenderID: "user1", Content: "how are you?", SentAt: "2024-05-01T10:02:00.000Z", UpdatedAt: "2024-05-01T10:02:00.000Z"},
	}
}

func Test_LocalStore_Load_Empty(t *testing.T) {
	req := require.New(t)
	store := newLocalStore(t)

	messages, err := store.Load(context.Background())
	req.NoError(err)
	req.NotNil(messages)
	req.Empty(messages)
}

func Test_LocalStore_Save_And_Load_RoundTrip(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newLocalStore(t)

	req.NoError(store.Save(ctx, sampleMessages()))

	messages, err := store.Load(ctx)
	req.NoError(err)
	req.Equal(sampleMessages(), messages)
}

func Test_LocalStore_Save_Replaces_Previous_Content(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newLocalStore(t)

	req.NoError(store.Save(ctx, sampleMessages()))
	req.NoError(store.Save(ctx, sampleMessages()[:1]))

	messages, err := store.Load(ctx)
	req.NoError(err)
	req.Len(messages, 1)
}

func Test_LocalStore_Malformed_Value_Loads_Empty(t *testing.T) {
	req := require.New(t)
	store := newLocalStore(t)
	for _, raw := range []string{"{not json", `{"id":"msg-1"}`, "null", ""} {
		req.NoError(store.db.Update(func(txn *badger.Txn) error {
			return txn.Set(store.key, []byte(raw))
		}))

		messages, err := store.Load(context.Background())
		req.NoError(err)
		req.Empty(messages, "value %q", raw)
	}
}

func Test_LocalStore_Delete_Removes_Only_Target(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newLocalStore(t)
	req.NoError(store.Save(ctx, sampleMessages()))

	req.NoError(store.Delete(ctx, "msg-2"))

	messages, err := store.Load(ctx)
	req.NoError(err)
	req.Equal([]models.Message{sampleMessages()[0], sampleMessages()[2]}, messages)
}

func Test_LocalStore_Delete_Unknown_Id_Is_Noop(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newLocalStore(t)
	req.NoError(store.Save(ctx, sampleMessages()))

	req.NoError(store.Delete(ctx, "msg-404"))

	messages, err := store.Load(ctx)
	req.NoError(err)
	req.Equal(sampleMessages(), messages)
}

func Test_LocalStore_Insert_Appends(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newLocalStore(t)

	for _, m := range sampleMessages() {
		req.NoError(store.Insert(ctx, m))
	}

	messages, err := store.Load(ctx)
	req.NoError(err)
	req.Equal(sampleMessages(), messages)
}

func Test_LocalStore_Keys_Are_Isolated(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db, err := OpenBadger(t.TempDir())
	req.NoError(err)
	defer db.Close()

	first := NewLocalStore(db, "first", logrus.New())
	second := NewLocalStore(db, "second", logrus.New())
	req.NoError(first.Save(ctx, sampleMessages()))

	messages, err := second.Load(ctx)
	req.NoError(err)
	req.Empty(messages)
}

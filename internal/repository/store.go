//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
package repository

import (
	"context"
	"errors"

	"demochat/chat-widget/internal/models"
)

var ErrInvalidMessage = errors.New("invalid message")

// MessageStore is the storage a chat widget is wired to. Local and remote
// backends are interchangeable behind it.
type MessageStore interface {
	Load(ctx context.Context) ([]models.Message, error)
	Insert(ctx context.Context, msg models.Message) error
	Delete(ctx context.Context, id string) error
}

// Subscriber is implemented by stores that push inserted rows.
type Subscriber interface {
	Subscribe(ctx context.Context, onInsert func(models.Message)) (Subscription, error)
}

type Subscription interface {
	Unsubscribe() error
}

// ChatRepository is the hosted table backend: select by chat, insert, delete by
// primary key and a push channel for insert events.
type ChatRepository interface {
	GetChatMessages(ctx context.Context, chatID string) ([]models.Message, error)
	CreateMessage(ctx context.Context, msg models.Message) error
	DeleteMessage(ctx context.Context, id string) error
	SubscribeInserts(ctx context.Context, chatID string, onInsert func(models.Message)) (Subscription, error)
}

// RemoteStore binds a ChatRepository to a single chat.
type RemoteStore struct {
	repo   ChatRepository
	chatID string
}

func NewRemoteStore(repo ChatRepository, chatID string) *RemoteStore {
	return &RemoteStore{repo: repo, chatID: chatID}
}

func (s *RemoteStore) Load(ctx context.Context) ([]models.Message, error) {
	return s.repo.GetChatMessages(ctx, s.chatID)
}

func (s *RemoteStore) Insert(ctx context.Context, msg models.Message) error {
	if msg.ChatID == "" {
		msg.ChatID = s.chatID
	}
	return s.repo.CreateMessage(ctx, msg)
}

func (s *RemoteStore) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteMessage(ctx, id)
}

func (s *RemoteStore) Subscribe(ctx context.Context, onInsert func(models.Message)) (Subscription, error) {
	return s.repo.SubscribeInserts(ctx, s.chatID, onInsert)
}

// SubscriptionFunc adapts a teardown function to Subscription.
type SubscriptionFunc func() error

func (f SubscriptionFunc) Unsubscribe() error { return f() }

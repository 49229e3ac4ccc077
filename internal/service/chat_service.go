package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"demochat/chat-widget/internal/models"
	"demochat/chat-widget/internal/repository"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotOwner        = errors.New("message is not owned by the active user")
	ErrParticipants    = errors.New("exactly two participants are required")
	ErrNotSubscribable = errors.New("store does not push inserts")
)

// ChatService holds the state of one chat widget: the conversation, the
// active participant and the hovered message. It is not safe for concurrent
// use; callers drive it from a single event loop.
type ChatService struct {
	store        repository.MessageStore
	logger       *logrus.Logger
	chatID       string
	participants []models.User
	active       int
	messages     []models.Message
	hoveredID    string
	subscription repository.Subscription
	now          func() time.Time
}

type Option func(*ChatService)

// WithClock overrides the time source used for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *ChatService) { s.now = now }
}

func NewChatService(store repository.MessageStore, chatID string, participants []models.User, logger *logrus.Logger, opts ...Option) (*ChatService, error) {
	if len(participants) != 2 {
		return nil, ErrParticipants
	}
	s := &ChatService{
		store:        store,
		logger:       logger,
		chatID:       chatID,
		participants: participants,
		messages:     []models.Message{},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *ChatService) ChatID() string { return s.chatID }

func (s *ChatService) Participants() []models.User { return s.participants }

func (s *ChatService) ActiveUser() models.User { return s.participants[s.active] }

// ToggleUser switches the active participant.
func (s *ChatService) ToggleUser() models.User {
	s.active = 1 - s.active
	s.hoveredID = ""
	s.logger.WithField("user_id", s.ActiveUser().ID).Debug("Active user switched")
	return s.ActiveUser()
}

// Messages returns the in-memory conversation in arrival order.
func (s *ChatService) Messages() []models.Message {
	return s.messages
}

func (s *ChatService) HoveredID() string { return s.hoveredID }

func (s *ChatService) Hover(id string) { s.hoveredID = id }

// Refresh replaces the in-memory state with the store's content. A failed
// load leaves the state untouched.
func (s *ChatService) Refresh(ctx context.Context) {
	messages, err := s.store.Load(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("chat_id", s.chatID).Debug("Failed to load messages")
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	s.messages = messages
}

// Send composes a message from the active user. Blank content is ignored and
// returns false. A failed write is logged and the message stays visible.
func (s *ChatService) Send(ctx context.Context, content string) (models.Message, bool) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, false
	}

	now := s.now()
	msg := models.Message{
		ID:        models.NewMessageID(now),
		ChatID:    s.chatID,
		SenderID:  s.ActiveUser().ID,
		Content:   content,
		SentAt:    models.FormatTimestamp(now),
		UpdatedAt: models.FormatTimestamp(now),
	}
	s.messages = append(s.messages, msg)

	if err := s.store.Insert(ctx, msg); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"message_id": msg.ID,
			"chat_id":    s.chatID,
		}).Error("Failed to persist message")
		return msg, true
	}

	s.logger.WithFields(logrus.Fields{
		"message_id": msg.ID,
		"chat_id":    s.chatID,
		"sender_id":  msg.SenderID,
	}).Info("Message sent")

	return msg, true
}

// CanDelete reports whether id belongs to the active user.
func (s *ChatService) CanDelete(id string) bool {
	return lo.ContainsBy(s.messages, func(m models.Message) bool {
		return m.ID == id && m.SenderID == s.ActiveUser().ID
	})
}

// Delete removes one of the active user's messages. On a store failure the
// error is logged and the state is left as is; on success the conversation is
// reloaded. Unknown ids are a no-op.
func (s *ChatService) Delete(ctx context.Context, id string) error {
	if !lo.ContainsBy(s.messages, func(m models.Message) bool { return m.ID == id }) {
		return nil
	}
	if !s.CanDelete(id) {
		return ErrNotOwner
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.WithError(err).WithField("message_id", id).Error("Error deleting message")
		return nil
	}
	if s.hoveredID == id {
		s.hoveredID = ""
	}

	s.logger.WithField("message_id", id).Info("Message deleted")
	s.Refresh(ctx)
	return nil
}

// ApplyInsert merges a pushed row. Rows of other chats and ids already held
// (typically the echo of a local send) are dropped. It reports whether the
// state changed.
func (s *ChatService) ApplyInsert(msg models.Message) bool {
	if msg.ChatID != "" && msg.ChatID != s.chatID {
		return false
	}
	if lo.ContainsBy(s.messages, func(m models.Message) bool { return m.ID == msg.ID }) {
		return false
	}
	s.messages = append(s.messages, msg)
	return true
}

// Subscribe opens the store's push channel when it has one. Any previous
// subscription is closed first so at most one channel is open per widget.
func (s *ChatService) Subscribe(ctx context.Context, onInsert func(models.Message)) error {
	subscriber, ok := s.store.(repository.Subscriber)
	if !ok {
		return ErrNotSubscribable
	}
	if err := s.Close(); err != nil {
		s.logger.WithError(err).Warn("Failed to close previous subscription")
	}

	sub, err := subscriber.Subscribe(ctx, onInsert)
	if err != nil {
		return fmt.Errorf("subscribe to chat %s: %w", s.chatID, err)
	}
	s.subscription = sub
	return nil
}

// Close tears down the push subscription, if any.
func (s *ChatService) Close() error {
	if s.subscription == nil {
		return nil
	}
	sub := s.subscription
	s.subscription = nil
	return sub.Unsubscribe()
}

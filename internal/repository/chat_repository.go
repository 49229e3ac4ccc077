package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"demochat/chat-widget/internal/models"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const insertChannel = "chat_messages_insert"

type chatRepository struct {
	db     *sql.DB
	dsn    string
	logger *logrus.Logger
}

// PostgresRepository is the PostgreSQL-backed ChatRepository.
type PostgresRepository interface {
	ChatRepository
	InitializeTables() error
}

// NewChatRepository needs the DSN in addition to the pool because LISTEN
// requires a dedicated connection per subscription.
func NewChatRepository(db *sql.DB, dsn string, logger *logrus.Logger) PostgresRepository {
	return &chatRepository{
		db:     db,
		dsn:    dsn,
		logger: logger,
	}
}

func (r *chatRepository) InitializeTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS chat_messages (
		id TEXT PRIMARY KEY,
		chat_id TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		content TEXT NOT NULL,
		sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_chat_messages_chat_id ON chat_messages(chat_id);

	CREATE OR REPLACE FUNCTION notify_chat_message_insert() RETURNS trigger AS $$
	BEGIN
		PERFORM pg_notify('` + insertChannel + `', row_to_json(NEW)::text);
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;

	DROP TRIGGER IF EXISTS chat_messages_insert_notify ON chat_messages;
	CREATE TRIGGER chat_messages_insert_notify
		AFTER INSERT ON chat_messages
		FOR EACH ROW EXECUTE FUNCTION notify_chat_message_insert();
	`

	_, err := r.db.Exec(query)
	return err
}

func (r *chatRepository) GetChatMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	query := `
	SELECT id, chat_id, sender_id, content, sent_at, updated_at
	FROM chat_messages
	WHERE chat_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var msg models.Message
		var sentAt, updatedAt time.Time
		err := rows.Scan(
			&msg.ID, &msg.ChatID, &msg.SenderID, &msg.Content, &sentAt, &updatedAt,
		)
		if err != nil {
			return nil, err
		}
		msg.SentAt = models.FormatTimestamp(sentAt)
		msg.UpdatedAt = models.FormatTimestamp(updatedAt)
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg models.Message) error {
	if msg.ID == "" || msg.ChatID == "" {
		return fmt.Errorf("%w: id and chat_id are required", ErrInvalidMessage)
	}
	sentAt, err := models.ParseTimestamp(msg.SentAt)
	if err != nil {
		sentAt = time.Now()
	}
	updatedAt, err := models.ParseTimestamp(msg.UpdatedAt)
	if err != nil {
		updatedAt = sentAt
	}

	query := `
	INSERT INTO chat_messages (id, chat_id, sender_id, content, sent_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.ExecContext(ctx, query,
		msg.ID, msg.ChatID, msg.SenderID, msg.Content, sentAt, updatedAt,
	)
	return err
}

// DeleteMessage removes a row by primary key. Deleting a missing id is not an error.
func (r *chatRepository) DeleteMessage(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE id = $1`, id)
	return err
}

// SubscribeInserts opens a LISTEN connection and calls onInsert from a
// background goroutine for every row inserted into chatID.
func (r *chatRepository) SubscribeInserts(ctx context.Context, chatID string, onInsert func(models.Message)) (Subscription, error) {
	listener := pq.NewListener(r.dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			r.logger.WithError(err).WithField("event", ev).Warn("Postgres listener event")
		}
	})
	if err := listener.Listen(insertChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("listen %s: %w", insertChannel, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-listener.Notify:
				if !ok {
					return
				}
				// nil notification means the connection was re-established
				if n == nil {
					continue
				}
				msg, err := decodeNotification(n.Extra)
				if err != nil {
					r.logger.WithError(err).Debug("Ignoring malformed insert notification")
					continue
				}
				if msg.ChatID != chatID {
					continue
				}
				onInsert(msg)
			}
		}
	}()

	r.logger.WithField("chat_id", chatID).Info("Subscribed to message inserts")

	return SubscriptionFunc(func() error {
		cancel()
		<-done
		return listener.Close()
	}), nil
}

func decodeNotification(payload string) (models.Message, error) {
	var msg models.Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return models.Message{}, err
	}
	if msg.ID == "" {
		return models.Message{}, fmt.Errorf("%w: notification without id", ErrInvalidMessage)
	}
	if t, err := models.ParseTimestamp(msg.SentAt); err == nil {
		msg.SentAt = models.FormatTimestamp(t)
	}
	if t, err := models.ParseTimestamp(msg.UpdatedAt); err == nil {
		msg.UpdatedAt = models.FormatTimestamp(t)
	}
	return msg, nil
}

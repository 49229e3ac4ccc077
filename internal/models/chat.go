package models

import (
	"fmt"
	"time"
)

// TimestampLayout is the wire form of sent_at/updated_at: UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

type Message struct {
	ID        string `json:"id"`
	ChatID    string `json:"chat_id"`
	SenderID  string `json:"sender_id"`
	Content   string `json:"content"`
	SentAt    string `json:"sent_at"`
	UpdatedAt string `json:"updated_at"`
}

// SentTime parses SentAt. Unparsable values yield the zero time.
func (m Message) SentTime() time.Time {
	t, _ := ParseTimestamp(m.SentAt)
	return t
}

type User struct {
	ID        string `mapstructure:"id" validate:"required"`
	FirstName string `mapstructure:"first_name" validate:"required"`
	LastName  string `mapstructure:"last_name"`
	Avatar    string `mapstructure:"avatar"`
}

func (u User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

var DefaultUsers = []User{
	{
		ID:        "user1",
		FirstName: "Cat",
		LastName:  "Girl",
		Avatar:    "https://images.unsplash.com/photo-1514888286974-6c03e2ca1dba?auto=format&fit=crop&w=2643&q=80",
	},
	{
		ID:        "user2",
		FirstName: "Dog",
		LastName:  "Boy",
		Avatar:    "https://images.unsplash.com/photo-1543466835-00a7907e9de1?auto=format&fit=crop&w=2148&q=80",
	},
}

// NewMessageID derives an id from the wall clock. Two sends in the same millisecond collide.
func NewMessageID(now time.Time) string {
	return fmt.Sprintf("msg-%d", now.UnixMilli())
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	// Postgres text output, e.g. "2024-05-01 10:00:00.123+00"
	for _, layout := range []string{"2006-01-02 15:04:05.999999-07", "2006-01-02 15:04:05.999999-07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

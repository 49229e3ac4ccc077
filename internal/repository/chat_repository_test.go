package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_DecodeNotification(t *testing.T) {
	req := require.New(t)
	payload := `{"id":"msg-1","chat_id":"chat-1","sender_id":"user2","content":"hi",` +
		`"sent_at":"2024-05-01T10:01:00.5+00:00","updated_at":"2024-05-01T10:01:00.5+00:00"}`

	msg, err := decodeNotification(payload)
	req.NoError(err)
	req.Equal("msg-1", msg.ID)
	req.Equal("chat-1", msg.ChatID)
	req.Equal("user2", msg.SenderID)
	req.Equal("2024-05-01T10:01:00.500Z", msg.SentAt)
	req.Equal("2024-05-01T10:01:00.500Z", msg.UpdatedAt)
}

func Test_DecodeNotification_Rejects_Malformed(t *testing.T) {
	req := require.New(t)

	_, err := decodeNotification("{")
	req.Error(err)

	_, err = decodeNotification(`{"chat_id":"chat-1"}`)
	req.ErrorIs(err, ErrInvalidMessage)
}

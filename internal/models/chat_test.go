package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewMessageID(t *testing.T) {
	req := require.New(t)
	now := time.UnixMilli(1717000000123)
	req.Equal("msg-1717000000123", NewMessageID(now))
}

func TestTimestamp_RoundTrip(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 5, 1, 10, 30, 0, 123000000, time.UTC)

	formatted := FormatTimestamp(at)
	req.Equal("2024-05-01T10:30:00.123Z", formatted)

	parsed, err := ParseTimestamp(formatted)
	req.NoError(err)
	req.True(at.Equal(parsed))
}

func TestParseTimestamp_PostgresOffsets(t *testing.T) {
	req := require.New(t)

	parsed, err := ParseTimestamp("2024-05-01T10:30:00.123+00:00")
	req.NoError(err)
	req.Equal(2024, parsed.Year())

	parsed, err = ParseTimestamp("2024-05-01 10:30:00.5+02")
	req.NoError(err)
	req.Equal(8, parsed.UTC().Hour())
}

func TestMessage_SentTime_Malformed(t *testing.T) {
	req := require.New(t)
	msg := Message{SentAt: "yesterday"}
	req.True(msg.SentTime().IsZero())
}

func TestUser_DisplayName(t *testing.T) {
	req := require.New(t)
	req.Equal("Cat Girl", DefaultUsers[0].DisplayName())
	req.Equal("Solo", User{FirstName: "Solo"}.DisplayName())
}

// Package view turns a conversation into display rows. It holds no state
// and performs no I/O.
package view

import (
	"slices"

	"demochat/chat-widget/internal/models"

	"github.com/samber/lo"
)

const (
	DeleteConfirmTitle   = "Delete Message"
	DeleteConfirmMessage = "Are you sure you want to delete this message?"

	timeLayout = "Jan 2, 3:04 PM"
)

type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

type Tint int

const (
	TintLight Tint = iota
	TintDark
)

type Row struct {
	Message models.Message
	Own     bool
	Align   Align
	Tint    Tint
	// Avatar is empty for the active user's own messages.
	Avatar     string
	ShowDelete bool
	Time       string
}

// Sort returns a copy ordered newest first by sent_at. Messages with equal
// or unparsable timestamps keep their relative order.
func Sort(messages []models.Message) []models.Message {
	sorted := slices.Clone(messages)
	slices.SortStableFunc(sorted, func(a, b models.Message) int {
		return b.SentTime().Compare(a.SentTime())
	})
	return sorted
}

// Build lays out messages for the given active user. hoveredID selects the
// row that reveals the delete control, if that row is owned.
func Build(messages []models.Message, activeUserID, hoveredID string, avatars *AvatarCache) []Row {
	return lo.Map(Sort(messages), func(m models.Message, _ int) Row {
		own := m.SenderID == activeUserID
		row := Row{
			Message:    m,
			Own:        own,
			Align:      AlignLeft,
			Tint:       TintLight,
			ShowDelete: own && hoveredID != "" && hoveredID == m.ID,
			Time:       FormatTime(m),
		}
		if own {
			row.Align = AlignRight
			row.Tint = TintDark
		} else if avatars != nil {
			row.Avatar = avatars.Get(m.SenderID)
		}
		return row
	})
}

// FormatTime renders sent_at in the local zone, e.g. "May 1, 10:30 AM".
func FormatTime(m models.Message) string {
	t := m.SentTime()
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(timeLayout)
}

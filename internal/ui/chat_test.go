package ui

import (
	"context"
	"fmt"
	"testing"
	"time"

	"demochat/chat-widget/internal/models"
	"demochat/chat-widget/internal/repository"
	"demochat/chat-widget/internal/service"
	"demochat/chat-widget/internal/view"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const chatID = "4113f429-c4ad-42aa-b43f-0a2bcafaeaa5"

func newTestModel(t *testing.T) (chatModel, *service.ChatService) {
	t.Helper()
	db, err := repository.OpenBadger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		at = at.Add(time.Second)
		return at
	}
	logger := logrus.New()
	svc, err := service.NewChatService(repository.NewLocalStore(db, "", logger), chatID, models.DefaultUsers, logger, service.WithClock(clock))
	require.NoError(t, err)

	m := newChatModel(context.Background(), svc, view.NewAvatarCache(models.DefaultUsers, ""), logger, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	return next.(chatModel), svc
}

func press(m chatModel, msgs ...tea.Msg) chatModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(chatModel)
	}
	return m
}

func typeText(text string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

var (
	enter     = tea.KeyMsg{Type: tea.KeyEnter}
	up        = tea.KeyMsg{Type: tea.KeyUp}
	down      = tea.KeyMsg{Type: tea.KeyDown}
	ctrlD     = tea.KeyMsg{Type: tea.KeyCtrlD}
	ctrlT     = tea.KeyMsg{Type: tea.KeyCtrlT}
	yes       = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}
	no        = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")}
	escapeKey = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestChatModel_Send_And_Switch_User(t *testing.T) {
	req := require.New(t)
	m, svc := newTestModel(t)

	m = press(m, typeText("hello"), enter, ctrlT, typeText("hi"), enter)

	req.Len(svc.Messages(), 2)
	req.Empty(m.input.Value())
	req.Equal("hi", m.rows[0].Message.Content)
	req.Equal(view.AlignRight, m.rows[0].Align)
	req.Equal(view.AlignLeft, m.rows[1].Align)
	req.Contains(m.View(), "Active User: Dog")

	m = press(m, ctrlT)
	req.Equal(view.AlignLeft, m.rows[0].Align)
	req.Contains(m.View(), "Active User: Cat")
}

func TestChatModel_Blank_Input_Is_Ignored(t *testing.T) {
	req := require.New(t)
	m, svc := newTestModel(t)

	m = press(m, enter, typeText("   "), enter)
	req.Empty(svc.Messages())
	req.Contains(m.View(), "No messages yet.")
}

func TestChatModel_Delete_With_Confirmation(t *testing.T) {
	req := require.New(t)
	m, svc := newTestModel(t)
	m = press(m, typeText("first"), enter, typeText("second"), enter)

	// hover the newest message and open the prompt
	m = press(m, up, ctrlD)
	req.True(m.confirming)
	req.Contains(m.View(), view.DeleteConfirmMessage)

	m = press(m, no)
	req.False(m.confirming)
	req.Len(svc.Messages(), 2)

	m = press(m, ctrlD, yes)
	req.False(m.confirming)
	req.Len(svc.Messages(), 1)
	req.Equal("first", svc.Messages()[0].Content)
}

func TestChatModel_Cannot_Delete_Other_Users_Message(t *testing.T) {
	req := require.New(t)
	m, svc := newTestModel(t)
	m = press(m, typeText("mine"), enter, ctrlT)

	m = press(m, down, ctrlD)
	req.False(m.confirming)
	req.Len(svc.Messages(), 1)
}

func TestChatModel_Pushed_Insert_Is_Merged_Once(t *testing.T) {
	req := require.New(t)
	m, svc := newTestModel(t)
	pushed := models.Message{
		ID: "msg-remote", ChatID: chatID, SenderID: "user2", Content: "from afar",
		SentAt: "2030-01-01T00:00:00.000Z", UpdatedAt: "2030-01-01T00:00:00.000Z",
	}

	m = press(m, insertMsg{message: pushed}, insertMsg{message: pushed})
	req.Len(svc.Messages(), 1)
	req.Equal("from afar", m.rows[0].Message.Content)
	req.Equal(models.DefaultUsers[1].Avatar, m.rows[0].Avatar)
}

func TestChatModel_Escape_Quits(t *testing.T) {
	req := require.New(t)
	m, _ := newTestModel(t)

	_, cmd := m.Update(escapeKey)
	req.NotNil(cmd)
	req.IsType(tea.QuitMsg{}, cmd())
}

// floodingStore pushes rows until its subscription is closed, like a busy
// remote chat the widget never drains.
type floodingStore struct {
	*repository.LocalStore
}

func (s floodingStore) Subscribe(ctx context.Context, onInsert func(models.Message)) (repository.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return
			default:
			}
			onInsert(models.Message{ID: fmt.Sprintf("msg-%d", i), ChatID: chatID, SenderID: "user2", Content: "spam"})
		}
	}()
	return repository.SubscriptionFunc(func() error {
		cancel()
		<-done
		return nil
	}), nil
}

func TestSubscribe_Stop_Does_Not_Hang_On_Full_Buffer(t *testing.T) {
	req := require.New(t)
	db, err := repository.OpenBadger(t.TempDir())
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	logger := logrus.New()
	svc, err := service.NewChatService(floodingStore{repository.NewLocalStore(db, "", logger)}, chatID, models.DefaultUsers, logger)
	req.NoError(err)

	inserts, stop := subscribe(context.Background(), svc, logger)
	req.NotNil(inserts)
	req.Eventually(func() bool { return len(inserts) == cap(inserts) }, 2*time.Second, 10*time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		req.FailNow("closing the subscription blocked on a full buffer")
	}
}

func TestSubscribe_Store_Without_Push(t *testing.T) {
	req := require.New(t)
	_, svc := newTestModel(t)

	inserts, stop := subscribe(context.Background(), svc, logrus.New())
	req.Nil(inserts)
	stop()
}

func TestWaitForInsert(t *testing.T) {
	req := require.New(t)
	req.Nil(waitForInsert(nil))

	ch := make(chan models.Message, 1)
	ch <- models.Message{ID: "msg-1"}
	req.Equal(insertMsg{message: models.Message{ID: "msg-1"}}, waitForInsert(ch)())

	close(ch)
	req.Nil(waitForInsert(ch)())
}

func TestInitials(t *testing.T) {
	req := require.New(t)
	req.Equal("CG", initials(models.DefaultUsers[0]))
	req.Equal("?", initials(models.User{}))
}

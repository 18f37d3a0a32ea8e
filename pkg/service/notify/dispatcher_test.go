package notify_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
	"github.com/actio-dev/actio/pkg/repository/memory"
	"github.com/actio-dev/actio/pkg/service/notify"
	syncsvc "github.com/actio-dev/actio/pkg/service/sync"
)

type stubEmail struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *stubEmail) SendEmail(ctx context.Context, recipients []string, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, recipients...)
	return nil
}

type stubChat struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (s *stubChat) PostMessage(ctx context.Context, channel, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, text)
	return nil
}

func newEngine(t *testing.T) (*syncsvc.Engine, *memory.Memory) {
	t.Helper()
	repo := memory.New()
	t.Cleanup(func() { repo.Close() })
	return syncsvc.New(repo, syncsvc.Config{Attempts: 1, Delay: time.Millisecond}), repo
}

func createRecipient(t *testing.T, repo *memory.Memory, email, phone string) types.EntityID {
	t.Helper()
	created, err := repo.Entity().Create(context.Background(), &model.Entity{
		Kind:  types.KindResponsible,
		Name:  "recipient",
		Email: email,
		Phone: phone,
	})
	gt.NoError(t, err).Required()
	return created.ID
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	trigger := notify.Trigger{
		Title:         "Action assigned",
		Body:          "Review the quarterly report",
		ReferenceID:   "action-1",
		ReferenceKind: model.ReferenceKindAction,
	}

	t.Run("internal channel persists a notification row", func(t *testing.T) {
		engine, _ := newEngine(t)
		dispatcher := notify.New(engine)
		recipientID := types.NewEntityID()

		result := dispatcher.Dispatch(ctx, trigger, []types.EntityID{recipientID},
			[]types.Channel{types.ChannelInternal})
		gt.Value(t, result.Delivered()).Equal(1)
		gt.Value(t, result.Failed()).Equal(0)

		notifications, err := engine.ListNotificationsByRecipient(ctx, recipientID)
		gt.NoError(t, err).Required()
		gt.Array(t, notifications).Length(1)
		gt.Value(t, notifications[0].Title).Equal("Action assigned")
		gt.Value(t, notifications[0].ReferenceKind).Equal(model.ReferenceKindAction)
		gt.B(t, notifications[0].Read).False()
	})

	t.Run("email delivers when the recipient has an address", func(t *testing.T) {
		engine, repo := newEngine(t)
		email := &stubEmail{}
		dispatcher := notify.New(engine, notify.WithEmail(email))
		recipientID := createRecipient(t, repo, "alice@example.com", "")

		result := dispatcher.Dispatch(ctx, trigger, []types.EntityID{recipientID},
			[]types.Channel{types.ChannelEmail})
		gt.Value(t, result.Delivered()).Equal(1)
		gt.Array(t, email.sent).Length(1)
		gt.Value(t, email.sent[0]).Equal("alice@example.com")
	})

	t.Run("missing contact data skips instead of failing", func(t *testing.T) {
		engine, repo := newEngine(t)
		dispatcher := notify.New(engine, notify.WithEmail(&stubEmail{}))
		recipientID := createRecipient(t, repo, "", "")

		result := dispatcher.Dispatch(ctx, trigger, []types.EntityID{recipientID},
			[]types.Channel{types.ChannelEmail, types.ChannelSMS})
		gt.Value(t, result.Skipped()).Equal(2)
		gt.Value(t, result.Failed()).Equal(0)
		gt.Value(t, result.Delivered()).Equal(0)
	})

	t.Run("transport error is a failure, not a skip", func(t *testing.T) {
		engine, repo := newEngine(t)
		email := &stubEmail{err: goerr.New("smtp unreachable")}
		dispatcher := notify.New(engine, notify.WithEmail(email))
		recipientID := createRecipient(t, repo, "alice@example.com", "")

		result := dispatcher.Dispatch(ctx, trigger, []types.EntityID{recipientID},
			[]types.Channel{types.ChannelEmail})
		gt.Value(t, result.Failed()).Equal(1)
		gt.Value(t, result.Skipped()).Equal(0)
	})

	t.Run("one failing channel does not block the others", func(t *testing.T) {
		engine, repo := newEngine(t)
		email := &stubEmail{err: goerr.New("smtp unreachable")}
		dispatcher := notify.New(engine, notify.WithEmail(email))
		recipientID := createRecipient(t, repo, "alice@example.com", "")

		result := dispatcher.Dispatch(ctx, trigger, []types.EntityID{recipientID},
			[]types.Channel{types.ChannelEmail, types.ChannelInternal})
		gt.Value(t, result.Failed()).Equal(1)
		gt.Value(t, result.Delivered()).Equal(1)

		notifications, err := engine.ListNotificationsByRecipient(ctx, recipientID)
		gt.NoError(t, err).Required()
		gt.Array(t, notifications).Length(1)
	})

	t.Run("chat posts once to the shared channel", func(t *testing.T) {
		engine, repo := newEngine(t)
		chat := &stubChat{}
		dispatcher := notify.New(engine, notify.WithChat(chat, "#ops"))
		first := createRecipient(t, repo, "", "")
		second := createRecipient(t, repo, "", "")

		result := dispatcher.Dispatch(ctx, trigger, []types.EntityID{first, second},
			[]types.Channel{types.ChannelChat})
		gt.Value(t, result.Delivered()).Equal(1)
		gt.Array(t, chat.messages).Length(1)
	})

	t.Run("unconfigured chat is skipped", func(t *testing.T) {
		engine, _ := newEngine(t)
		dispatcher := notify.New(engine)

		result := dispatcher.Dispatch(ctx, trigger, nil, []types.Channel{types.ChannelChat})
		gt.Value(t, result.Skipped()).Equal(1)
	})
}

package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/actio-dev/actio/pkg/domain/types"
	"github.com/actio-dev/actio/pkg/repository/memory"
	"github.com/actio-dev/actio/pkg/service/notify"
	syncsvc "github.com/actio-dev/actio/pkg/service/sync"
	"github.com/actio-dev/actio/pkg/usecase"
)

func setupWithDispatcher(t *testing.T) (*usecase.UseCases, *notify.Dispatcher) {
	t.Helper()
	repo := memory.New()
	t.Cleanup(func() { repo.Close() })

	engine := syncsvc.New(repo, syncsvc.Config{Attempts: 1, Delay: time.Millisecond})
	dispatcher := notify.New(engine)
	return usecase.New(engine, usecase.WithDispatcher(dispatcher)), dispatcher
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	trigger := notify.Trigger{Title: "Action assigned", Body: "details"}

	t.Run("listing is scoped per recipient", func(t *testing.T) {
		uc, dispatcher := setupWithDispatcher(t)
		alice := types.NewEntityID()
		bob := types.NewEntityID()

		dispatcher.Dispatch(ctx, trigger, []types.EntityID{alice, bob},
			[]types.Channel{types.ChannelInternal})
		dispatcher.Dispatch(ctx, trigger, []types.EntityID{alice},
			[]types.Channel{types.ChannelInternal})

		mine, err := uc.ListNotifications(ctx, alice)
		gt.NoError(t, err).Required()
		gt.Array(t, mine).Length(2)

		theirs, err := uc.ListNotifications(ctx, bob)
		gt.NoError(t, err).Required()
		gt.Array(t, theirs).Length(1)
	})

	t.Run("mark read and unread drive the counter", func(t *testing.T) {
		uc, dispatcher := setupWithDispatcher(t)
		alice := types.NewEntityID()

		dispatcher.Dispatch(ctx, trigger, []types.EntityID{alice},
			[]types.Channel{types.ChannelInternal})

		notifications, err := uc.ListNotifications(ctx, alice)
		gt.NoError(t, err).Required()
		gt.Array(t, notifications).Length(1).Required()

		count, err := uc.UnreadCount(ctx, alice)
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(1)

		read, err := uc.MarkRead(ctx, notifications[0].ID)
		gt.NoError(t, err).Required()
		gt.B(t, read.Read).True()

		count, err = uc.UnreadCount(ctx, alice)
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(0)

		// Marking twice is a no-op
		_, err = uc.MarkRead(ctx, notifications[0].ID)
		gt.NoError(t, err).Required()

		unread, err := uc.MarkUnread(ctx, notifications[0].ID)
		gt.NoError(t, err).Required()
		gt.B(t, unread.Read).False()

		count, err = uc.UnreadCount(ctx, alice)
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(1)
	})

	t.Run("marking a missing notification fails", func(t *testing.T) {
		uc, _ := setupWithDispatcher(t)

		_, err := uc.MarkRead(ctx, types.NewNotificationID())
		gt.Error(t, err).Is(usecase.ErrNotificationNotFound)
	})

	t.Run("state changes announce to the responsible", func(t *testing.T) {
		uc, _ := setupWithDispatcher(t)
		actor := admin()

		responsible := types.NewEntityID()
		action := draft("announced")
		action.ResponsibleID = responsible

		created, err := uc.CreateAction(ctx, actor, action)
		gt.NoError(t, err).Required()

		// The dispatch runs asynchronously after the write commits
		gt.B(t, waitFor(func() bool {
			notifications, err := uc.ListNotifications(ctx, responsible)
			return err == nil && len(notifications) == 1
		})).True()

		notifications, err := uc.ListNotifications(ctx, responsible)
		gt.NoError(t, err).Required()
		gt.Value(t, notifications[0].ReferenceID).Equal(created.ID.String())
	})
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

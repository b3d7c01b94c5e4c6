package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/kairos/pkg/domain/model"
	"github.com/secmon-lab/kairos/pkg/repository/file"
	"github.com/secmon-lab/kairos/pkg/repository/memory"
)

func newTestNotification(content string, at time.Time) *model.Notification {
	return &model.Notification{
		ID:                model.NewNotificationID(),
		Content:           content,
		Notify:            []string{"U1"},
		NotificationTimes: []time.Time{at},
	}
}

func TestSnapshotStoreInsert(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("inserted entry is listed and persisted", func(t *testing.T) {
		backend := memory.NewBackend[model.Notification]()
		store, err := memory.NewNotificationStore(ctx, backend)
		gt.NoError(t, err).Required()

		n := newTestNotification("call mom", at)
		gt.NoError(t, store.Insert(ctx, n.ID, n)).Required()

		list, err := store.List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1)
		gt.Value(t, list[0].Content).Equal("call mom")
		gt.Value(t, backend.SaveCount()).Equal(1)

		saved, err := backend.Load(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, saved[n.ID].Content).Equal("call mom")
	})

	t.Run("insert is rolled back when persistence fails", func(t *testing.T) {
		backend := memory.NewBackend[model.Notification]()
		store, err := memory.NewNotificationStore(ctx, backend)
		gt.NoError(t, err).Required()

		backend.FailSave(errors.New("disk full"))
		n := newTestNotification("call mom", at)
		gt.Error(t, store.Insert(ctx, n.ID, n))

		list, err := store.List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(0)
	})

	t.Run("failed overwrite restores previous value", func(t *testing.T) {
		backend := memory.NewBackend[model.Notification]()
		store, err := memory.NewNotificationStore(ctx, backend)
		gt.NoError(t, err).Required()

		n := newTestNotification("original", at)
		gt.NoError(t, store.Insert(ctx, n.ID, n)).Required()

		backend.FailSave(errors.New("disk full"))
		replaced := n.Clone()
		replaced.Content = "replaced"
		gt.Error(t, store.Insert(ctx, n.ID, replaced))

		list, err := store.List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1)
		gt.Value(t, list[0].Content).Equal("original")
	})

	t.Run("empty id is rejected", func(t *testing.T) {
		store, err := memory.NewNotificationStore(ctx, memory.NewBackend[model.Notification]())
		gt.NoError(t, err).Required()
		gt.Error(t, store.Insert(ctx, "", newTestNotification("x", at)))
	})

	t.Run("caller cannot modify stored entries", func(t *testing.T) {
		store, err := memory.NewNotificationStore(ctx, memory.NewBackend[model.Notification]())
		gt.NoError(t, err).Required()

		n := newTestNotification("call mom", at)
		gt.NoError(t, store.Insert(ctx, n.ID, n)).Required()
		n.Content = "changed after insert"

		list, err := store.List(ctx)
		gt.NoError(t, err).Required()
		list[0].NotificationTimes = nil

		list, err = store.List(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, list[0].Content).Equal("call mom")
		gt.Array(t, list[0].NotificationTimes).Length(1)
	})
}

func TestSnapshotStoreMutate(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("changes are kept even if persistence fails", func(t *testing.T) {
		backend := memory.NewBackend[model.Notification]()
		store, err := memory.NewNotificationStore(ctx, backend)
		gt.NoError(t, err).Required()

		n := newTestNotification("call mom", at)
		gt.NoError(t, store.Insert(ctx, n.ID, n)).Required()

		backend.FailSave(errors.New("disk full"))
		err = store.Mutate(ctx, func(entries map[string]*model.Notification) error {
			delete(entries, n.ID)
			return nil
		})
		gt.Error(t, err)

		list, err := store.List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(0)
	})

	t.Run("error from fn skips persistence", func(t *testing.T) {
		backend := memory.NewBackend[model.Notification]()
		store, err := memory.NewNotificationStore(ctx, backend)
		gt.NoError(t, err).Required()

		fnErr := errors.New("stop")
		err = store.Mutate(ctx, func(entries map[string]*model.Notification) error {
			return fnErr
		})
		gt.True(t, errors.Is(err, fnErr))
		gt.Value(t, backend.SaveCount()).Equal(0)
	})
}

func TestSnapshotStoreReload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := memory.NewTodoStore(ctx, file.New[model.TodoItem](dir, "todos"))
	gt.NoError(t, err).Required()

	item := model.NewTodoItem("U1", "buy milk", time.Now().UTC())
	gt.NoError(t, store.Insert(ctx, item.ID, item)).Required()

	reopened, err := memory.NewTodoStore(ctx, file.New[model.TodoItem](dir, "todos"))
	gt.NoError(t, err).Required()

	list, err := reopened.List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, list).Length(1)
	gt.Value(t, list[0].Content).Equal("buy milk")
	gt.Value(t, list[0].UserID).Equal("U1")
}

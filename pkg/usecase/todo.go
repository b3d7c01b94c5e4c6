package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"github.com/secmon-lab/kairos/pkg/domain/model"
	"github.com/secmon-lab/kairos/pkg/utils/logging"
)

const digestHeader = "Good morning! Here is your current todo list:"

// TodoUseCase manages per-user todo lists
type TodoUseCase struct {
	repo      interfaces.TodoRepository
	messenger interfaces.Messenger
	now       func() time.Time
}

func NewTodoUseCase(repo interfaces.TodoRepository, messenger interfaces.Messenger) *TodoUseCase {
	return &TodoUseCase{
		repo:      repo,
		messenger: messenger,
		now:       time.Now,
	}
}

func (uc *TodoUseCase) Add(ctx context.Context, userID, content string) (*model.TodoItem, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, goerr.Wrap(ErrEmptyTodo, "todo content is required", goerr.V(UserIDKey, userID))
	}

	item := model.NewTodoItem(userID, content, uc.now())
	if err := uc.repo.Insert(ctx, item.ID, item); err != nil {
		return nil, goerr.Wrap(err, "failed to add todo", goerr.V(UserIDKey, userID))
	}
	return item, nil
}

// ListOpen returns the user's open todos, oldest first. Indexes used by
// Done refer to this order.
func (uc *TodoUseCase) ListOpen(ctx context.Context, userID string) ([]*model.TodoItem, error) {
	all, err := uc.repo.List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list todos", goerr.V(UserIDKey, userID))
	}

	var open []*model.TodoItem
	for _, item := range all {
		if item.UserID == userID && item.IsOpen() {
			open = append(open, item)
		}
	}
	model.SortTodos(open)
	return open, nil
}

// Done marks the index-th (1-based) open todo of the user as completed
func (uc *TodoUseCase) Done(ctx context.Context, userID string, index int) error {
	if index <= 0 {
		return goerr.Wrap(ErrInvalidTodoIndex, "todo index must be positive", goerr.V("index", index))
	}

	return uc.repo.Mutate(ctx, func(entries map[string]*model.TodoItem) error {
		var open []*model.TodoItem
		for _, item := range entries {
			if item.UserID == userID && item.IsOpen() {
				open = append(open, item)
			}
		}
		model.SortTodos(open)

		if index > len(open) {
			return goerr.Wrap(ErrTodoIndexNotFound, "no such todo",
				goerr.V("index", index),
				goerr.V("open", len(open)))
		}

		completedAt := uc.now()
		open[index-1].CompletedAt = &completedAt
		return nil
	})
}

// Clear removes the user's completed todos and returns how many were removed
func (uc *TodoUseCase) Clear(ctx context.Context, userID string) (int, error) {
	removed := 0
	err := uc.repo.Mutate(ctx, func(entries map[string]*model.TodoItem) error {
		for id, item := range entries {
			if item.UserID == userID && !item.IsOpen() {
				delete(entries, id)
				removed++
			}
		}
		return nil
	})
	if err != nil {
		return removed, goerr.Wrap(err, "failed to clear todos", goerr.V(UserIDKey, userID))
	}
	return removed, nil
}

// SendDailyDigest sends each user with open todos a direct message listing
// them. A failed send does not stop the others; all failures are joined.
func (uc *TodoUseCase) SendDailyDigest(ctx context.Context) error {
	all, err := uc.repo.List(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list todos")
	}

	byUser := make(map[string][]*model.TodoItem)
	for _, item := range all {
		if item.IsOpen() {
			byUser[item.UserID] = append(byUser[item.UserID], item)
		}
	}

	var errs []error
	for userID, items := range byUser {
		model.SortTodos(items)
		body := model.FormatTodoList(digestHeader, items)
		if err := uc.messenger.SendDirectMessage(ctx, userID, body); err != nil {
			errs = append(errs, goerr.Wrap(err, "failed to send todo digest", goerr.V(UserIDKey, userID)))
		}
	}

	logging.From(ctx).Info("Todo digest sent",
		slog.Int("users", len(byUser)),
		slog.Int("failures", len(errs)))
	return errors.Join(errs...)
}

package model

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TodoItem is an entry of a user's todo list
type TodoItem struct {
	ID          string     `json:"id" firestore:"id"`
	UserID      string     `json:"user_id" firestore:"user_id"`
	Content     string     `json:"content" firestore:"content"`
	CreatedAt   time.Time  `json:"created_at" firestore:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" firestore:"completed_at,omitempty"`
}

func NewTodoItem(userID, content string, now time.Time) *TodoItem {
	return &TodoItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
	}
}

func (t *TodoItem) IsOpen() bool {
	return t.CompletedAt == nil
}

func (t *TodoItem) Clone() *TodoItem {
	if t == nil {
		return nil
	}
	c := *t
	if t.CompletedAt != nil {
		done := *t.CompletedAt
		c.CompletedAt = &done
	}
	return &c
}

// SortTodos orders items oldest first
func SortTodos(items []*TodoItem) {
	slices.SortFunc(items, func(a, b *TodoItem) int { return a.CreatedAt.Compare(b.CreatedAt) })
}

// FormatTodoList renders items as a numbered list under header
func FormatTodoList(header string, items []*TodoItem) string {
	var b strings.Builder
	b.WriteString(header)
	for i, item := range items {
		b.WriteString("\n")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(") ")
		b.WriteString(item.Content)
	}
	return b.String()
}

package usecase

import "errors"

// Sentinel errors for use case layer
var (
	ErrEmptyRequest      = errors.New("request text is empty")
	ErrInvalidTodoIndex  = errors.New("invalid todo index")
	ErrTodoIndexNotFound = errors.New("todo index does not exist")
	ErrEmptyTodo         = errors.New("todo content is empty")
	ErrInvalidTarget     = errors.New("invalid notification target")
)

// Context keys for error values
const (
	ActionIDKey = "action_id"
	UserIDKey   = "user_id"
)

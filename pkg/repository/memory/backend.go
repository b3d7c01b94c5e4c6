package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
)

// Backend keeps the last saved snapshot in memory. Nothing survives a
// restart.
type Backend[T any] struct {
	mu       sync.Mutex
	data     []byte
	saveErr  error
	saveCall int
}

var _ interfaces.Backend[struct{}] = &Backend[struct{}]{}

func NewBackend[T any]() *Backend[T] {
	return &Backend[T]{}
}

func (b *Backend[T]) Load(ctx context.Context) (map[string]*T, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := make(map[string]*T)
	if b.data == nil {
		return entries, nil
	}
	if err := json.Unmarshal(b.data, &entries); err != nil {
		return nil, goerr.Wrap(err, "failed to decode snapshot")
	}
	return entries, nil
}

func (b *Backend[T]) Save(ctx context.Context, entries map[string]*T) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.saveCall++
	if b.saveErr != nil {
		return b.saveErr
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return goerr.Wrap(err, "failed to encode snapshot")
	}
	b.data = data
	return nil
}

// FailSave makes subsequent Save calls return err. nil restores normal
// behavior.
func (b *Backend[T]) FailSave(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saveErr = err
}

// SaveCount returns how many times Save has been called
func (b *Backend[T]) SaveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saveCall
}

package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/kairos/pkg/domain/model"
	"github.com/secmon-lab/kairos/pkg/domain/types"
	"github.com/secmon-lab/kairos/pkg/repository/memory"
	"github.com/secmon-lab/kairos/pkg/usecase"
)

type nluCall struct {
	text string
	mode types.NLUMode
}

// stubNLU answers per mode. A missing mode answers with an error.
type stubNLU struct {
	mu      sync.Mutex
	replies map[types.NLUMode]string
	errs    map[types.NLUMode]error
	calls   []nluCall
}

func newStubNLU() *stubNLU {
	return &stubNLU{
		replies: make(map[types.NLUMode]string),
		errs:    make(map[types.NLUMode]error),
	}
}

func (s *stubNLU) Generate(ctx context.Context, text string, mode types.NLUMode) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, nluCall{text: text, mode: mode})
	if err, ok := s.errs[mode]; ok {
		return "", err
	}
	if reply, ok := s.replies[mode]; ok {
		return reply, nil
	}
	return "", errors.New("no reply configured")
}

func (s *stubNLU) callsFor(mode types.NLUMode) []nluCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []nluCall
	for _, c := range s.calls {
		if c.mode == mode {
			out = append(out, c)
		}
	}
	return out
}

type statusUpdate struct {
	actionID  model.ActionID
	channelID string
	userID    string
	message   string
}

// recordingPresenter keeps every call for inspection
type recordingPresenter struct {
	mu             sync.Mutex
	prompts        []*model.Action
	updates        []statusUpdate
	statusMessages []statusUpdate
	promptErr      error
	nextMessageID  string
}

func (p *recordingPresenter) Prompt(ctx context.Context, action *model.Action) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.promptErr != nil {
		return p.promptErr
	}
	if action.Draft.MessageID == "" {
		action.Draft.MessageID = p.nextMessageID
	}
	p.prompts = append(p.prompts, action.Clone())
	return nil
}

func (p *recordingPresenter) UpdateStatus(ctx context.Context, action *model.Action, msg string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, statusUpdate{actionID: action.ID, channelID: action.ChannelID, userID: action.UserID, message: msg})
	return nil
}

func (p *recordingPresenter) UpdateStatusMessage(ctx context.Context, channelID, userID, msg string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusMessages = append(p.statusMessages, statusUpdate{channelID: channelID, userID: userID, message: msg})
	return nil
}

func (p *recordingPresenter) promptCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

type sentMessage struct {
	target  string
	content string
}

type recordingMessenger struct {
	mu      sync.Mutex
	sent    []sentMessage
	dms     []sentMessage
	failFor map[string]error
}

func (m *recordingMessenger) SendMessage(ctx context.Context, channelID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{target: channelID, content: content})
	return nil
}

func (m *recordingMessenger) SendDirectMessage(ctx context.Context, userID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failFor[userID]; err != nil {
		return err
	}
	m.dms = append(m.dms, sentMessage{target: userID, content: content})
	return nil
}

// recordingEmitter collects events instead of queueing them
type recordingEmitter struct {
	events []model.Event
	err    error
}

func (e *recordingEmitter) Emit(ctx context.Context, ev model.Event) error {
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, ev)
	return nil
}

type testStores struct {
	actions             *memory.ActionStore
	sessions            *memory.SessionStore
	notifications       *memory.SnapshotStore[model.Notification]
	notificationBackend *memory.Backend[model.Notification]
	todos               *memory.SnapshotStore[model.TodoItem]
	todoBackend         *memory.Backend[model.TodoItem]
}

func newTestStores(t *testing.T) *testStores {
	t.Helper()
	ctx := context.Background()

	nb := memory.NewBackend[model.Notification]()
	notifications, err := memory.NewNotificationStore(ctx, nb)
	gt.NoError(t, err).Required()

	tb := memory.NewBackend[model.TodoItem]()
	todos, err := memory.NewTodoStore(ctx, tb)
	gt.NoError(t, err).Required()

	return &testStores{
		actions:             memory.NewActionStore(),
		sessions:            memory.NewSessionStore(),
		notifications:       notifications,
		notificationBackend: nb,
		todos:               todos,
		todoBackend:         tb,
	}
}

func (s *testStores) repositories() usecase.Repositories {
	return usecase.Repositories{
		Actions:       s.actions,
		Sessions:      s.sessions,
		Notifications: s.notifications,
		Todos:         s.todos,
	}
}

package http_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/kairos/pkg/domain/model"
	"github.com/secmon-lab/kairos/pkg/repository/memory"
	"github.com/secmon-lab/kairos/pkg/usecase"
	"github.com/slack-go/slack"
)

const testSigningSecret = "test-signing-secret"

// computeSlackSignature computes the Slack signature for testing
func computeSlackSignature(signingSecret, timestamp, body string) string {
	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	return "v0=" + hex.EncodeToString(h.Sum(nil))
}

type ephemeral struct {
	channelID string
	userID    string
	text      string
}

type mockSlackService struct {
	mu         sync.Mutex
	messages   []ephemeral
	ephemerals []ephemeral
	views      []slack.ModalViewRequest
	triggerIDs []string
}

func (m *mockSlackService) PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error) {
	return "1700000000.000001", nil
}

func (m *mockSlackService) UpdateMessage(ctx context.Context, channelID, timestamp string, blocks []slack.Block, text string) error {
	return nil
}

func (m *mockSlackService) PostEphemeral(ctx context.Context, channelID, userID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ephemerals = append(m.ephemerals, ephemeral{channelID: channelID, userID: userID, text: text})
	return nil
}

func (m *mockSlackService) OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggerIDs = append(m.triggerIDs, triggerID)
	m.views = append(m.views, view)
	return nil
}

func (m *mockSlackService) SendMessage(ctx context.Context, channelID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, ephemeral{channelID: channelID, text: content})
	return nil
}

func (m *mockSlackService) SendDirectMessage(ctx context.Context, userID, content string) error {
	return nil
}

func (m *mockSlackService) sentMessages() []ephemeral {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ephemeral(nil), m.messages...)
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []model.Event
}

func (e *recordingEmitter) Emit(ctx context.Context, ev model.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return nil
}

func (e *recordingEmitter) recorded() []model.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.Event(nil), e.events...)
}

type fixture struct {
	uc      *usecase.UseCases
	actions *memory.ActionStore
	emitter *recordingEmitter
	svc     *mockSlackService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	notifications, err := memory.NewNotificationStore(ctx, memory.NewBackend[model.Notification]())
	gt.NoError(t, err).Required()
	todos, err := memory.NewTodoStore(ctx, memory.NewBackend[model.TodoItem]())
	gt.NoError(t, err).Required()

	f := &fixture{
		actions: memory.NewActionStore(),
		emitter: &recordingEmitter{},
		svc:     &mockSlackService{},
	}
	f.uc = usecase.New(usecase.Repositories{
		Actions:       f.actions,
		Sessions:      memory.NewSessionStore(),
		Notifications: notifications,
		Todos:         todos,
	}, usecase.WithEmitter(f.emitter))
	return f
}

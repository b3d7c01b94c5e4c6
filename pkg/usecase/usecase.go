package usecase

import (
	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"github.com/secmon-lab/kairos/pkg/service/classifier"
)

// Repositories groups the stores the use cases work on
type Repositories struct {
	Actions       interfaces.ActionRepository
	Sessions      interfaces.SessionRepository
	Notifications interfaces.NotificationRepository
	Todos         interfaces.TodoRepository
}

type UseCases struct {
	repos      Repositories
	nlu        interfaces.NLU
	classifier interfaces.Classifier
	presenter  interfaces.ApprovalPresenter
	messenger  interfaces.Messenger
	emitter    interfaces.EventEmitter

	Notify       *NotifyUseCase
	Workflow     *ApprovalWorkflow
	Notification *NotificationUseCase
	Todo         *TodoUseCase
}

type Option func(*UseCases)

// WithNLU sets the language model used for extraction and messages
func WithNLU(nlu interfaces.NLU) Option {
	return func(uc *UseCases) {
		uc.nlu = nlu
	}
}

// WithClassifier replaces the keyword classifier used by the router
func WithClassifier(c interfaces.Classifier) Option {
	return func(uc *UseCases) {
		uc.classifier = c
	}
}

func WithPresenter(p interfaces.ApprovalPresenter) Option {
	return func(uc *UseCases) {
		uc.presenter = p
	}
}

func WithMessenger(m interfaces.Messenger) Option {
	return func(uc *UseCases) {
		uc.messenger = m
	}
}

func WithEmitter(e interfaces.EventEmitter) Option {
	return func(uc *UseCases) {
		uc.emitter = e
	}
}

func New(repos Repositories, opts ...Option) *UseCases {
	uc := &UseCases{
		repos:      repos,
		classifier: classifier.NewHeuristic(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Notification = NewNotificationUseCase(repos.Notifications, uc.nlu)
	uc.Todo = NewTodoUseCase(repos.Todos, uc.messenger)
	uc.Notify = NewNotifyUseCase(NewSessionRouter(repos.Sessions, uc.classifier), uc.emitter)
	uc.Workflow = NewApprovalWorkflow(repos.Actions, uc.nlu, uc.presenter, uc.Notification)

	return uc
}

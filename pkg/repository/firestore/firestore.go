package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kairos/pkg/domain/model"
)

const (
	notificationsCollection = "notifications"
	todosCollection         = "todos"
)

type Firestore struct {
	client           *firestore.Client
	collectionPrefix string
}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Firestore) collection(name string) *firestore.CollectionRef {
	if f.collectionPrefix != "" {
		return f.client.Collection(f.collectionPrefix + "_" + name)
	}
	return f.client.Collection(name)
}

func (f *Firestore) Notifications() *Backend[model.Notification] {
	return newBackend[model.Notification](f, notificationsCollection)
}

func (f *Firestore) Todos() *Backend[model.TodoItem] {
	return newBackend[model.TodoItem](f, todosCollection)
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

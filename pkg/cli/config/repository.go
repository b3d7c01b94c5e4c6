package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"github.com/secmon-lab/kairos/pkg/domain/model"
	"github.com/secmon-lab/kairos/pkg/repository/file"
	"github.com/secmon-lab/kairos/pkg/repository/firestore"
	"github.com/secmon-lab/kairos/pkg/repository/gcs"
	"github.com/secmon-lab/kairos/pkg/repository/memory"
	"github.com/secmon-lab/kairos/pkg/usecase"
	"github.com/secmon-lab/kairos/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository backend types
const (
	BackendMemory    = "memory"
	BackendFile      = "file"
	BackendFirestore = "firestore"
	BackendGCS       = "gcs"
)

// Collection names shared by every backend
const (
	notificationsName = "notifications"
	todosName         = "todos"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend    string
	dataURL    string
	projectID  string
	databaseID string
	prefix     string
	bucket     string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (memory, file, firestore or gcs)",
			Category:    "Repository",
			Value:       BackendFile,
			Sources:     cli.EnvVars("KAIROS_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "data-url",
			Usage:       "Base directory or URL of the file backend",
			Category:    "Repository",
			Value:       "./data",
			Sources:     cli.EnvVars("KAIROS_DATA_URL"),
			Destination: &r.dataURL,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("KAIROS_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("KAIROS_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "repository-prefix",
			Usage:       "Collection prefix (firestore) or object prefix (gcs)",
			Category:    "Repository",
			Sources:     cli.EnvVars("KAIROS_REPOSITORY_PREFIX"),
			Destination: &r.prefix,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket (required when using gcs backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("KAIROS_GCS_BUCKET"),
			Destination: &r.bucket,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("data_url", r.dataURL),
		slog.String("project_id", r.projectID),
		slog.String("database_id", r.databaseID),
		slog.String("prefix", r.prefix),
		slog.String("bucket", r.bucket),
	)
}

// Configure opens the configured backend and loads the persisted
// collections. Actions and sessions always live in process memory. The
// caller must call the returned function to release the backend.
func (r *Repository) Configure(ctx context.Context) (usecase.Repositories, func(), error) {
	var repos usecase.Repositories

	notificationBackend, todoBackend, closer, err := r.backends(ctx)
	if err != nil {
		return repos, nil, err
	}

	notifications, err := memory.NewNotificationStore(ctx, notificationBackend)
	if err != nil {
		closer()
		return repos, nil, goerr.Wrap(err, "failed to load notifications")
	}
	todos, err := memory.NewTodoStore(ctx, todoBackend)
	if err != nil {
		closer()
		return repos, nil, goerr.Wrap(err, "failed to load todos")
	}

	repos = usecase.Repositories{
		Actions:       memory.NewActionStore(),
		Sessions:      memory.NewSessionStore(),
		Notifications: notifications,
		Todos:         todos,
	}
	return repos, closer, nil
}

func (r *Repository) backends(ctx context.Context) (interfaces.Backend[model.Notification], interfaces.Backend[model.TodoItem], func(), error) {
	noop := func() {}

	switch r.backend {
	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.NewBackend[model.Notification](), memory.NewBackend[model.TodoItem](), noop, nil

	case BackendFile:
		if r.dataURL == "" {
			return nil, nil, nil, goerr.Wrap(ErrMissingRequired, "data-url is required when using file backend", goerr.V(FieldKey, "data-url"))
		}
		logging.Default().Info("Using file repository", "data_url", r.dataURL)
		return file.New[model.Notification](r.dataURL, notificationsName), file.New[model.TodoItem](r.dataURL, todosName), noop, nil

	case BackendFirestore:
		if r.projectID == "" {
			return nil, nil, nil, goerr.Wrap(ErrMissingRequired, "firestore-project-id is required when using firestore backend", goerr.V(FieldKey, "firestore-project-id"))
		}
		client, err := firestore.New(ctx, r.projectID, r.databaseID, firestore.WithCollectionPrefix(r.prefix))
		if err != nil {
			return nil, nil, nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return client.Notifications(), client.Todos(), closeWith("firestore", client.Close), nil

	case BackendGCS:
		if r.bucket == "" {
			return nil, nil, nil, goerr.Wrap(ErrMissingRequired, "gcs-bucket is required when using gcs backend", goerr.V(FieldKey, "gcs-bucket"))
		}
		client, err := gcs.New(ctx, r.bucket, r.prefix)
		if err != nil {
			return nil, nil, nil, goerr.Wrap(err, "failed to initialize gcs repository")
		}
		logging.Default().Info("Using Cloud Storage repository", "bucket", r.bucket, "prefix", r.prefix)
		return gcs.NewBackend[model.Notification](client, notificationsName), gcs.NewBackend[model.TodoItem](client, todosName), closeWith("gcs", client.Close), nil

	default:
		return nil, nil, nil, goerr.Wrap(ErrInvalidBackend, "unknown repository backend", goerr.V(ValueKey, r.backend))
	}
}

func closeWith(name string, fn func() error) func() {
	return func() {
		if err := fn(); err != nil {
			logging.Default().Error("failed to close repository", "backend", name, "error", err.Error())
		}
	}
}

package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"github.com/secmon-lab/kairos/pkg/utils/safe"
)

// Client owns the storage client shared by all backends of a bucket
type Client struct {
	client *storage.Client
	bucket string
	prefix string
}

func New(ctx context.Context, bucket, prefix string) (*Client, error) {
	if bucket == "" {
		return nil, goerr.New("gcs bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}
	return &Client{client: client, bucket: bucket, prefix: prefix}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Backend stores a collection as one JSON object in a bucket
type Backend[T any] struct {
	client *Client
	object string
}

var _ interfaces.Backend[struct{}] = &Backend[struct{}]{}

// NewBackend returns a backend writing to <prefix>/<name>.json
func NewBackend[T any](client *Client, name string) *Backend[T] {
	return &Backend[T]{
		client: client,
		object: path.Join(client.prefix, name+".json"),
	}
}

func (b *Backend[T]) handle() *storage.ObjectHandle {
	return b.client.client.Bucket(b.client.bucket).Object(b.object)
}

func (b *Backend[T]) Load(ctx context.Context) (map[string]*T, error) {
	entries := make(map[string]*T)

	reader, err := b.handle().NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return entries, nil
		}
		return nil, goerr.Wrap(err, "failed to open snapshot", goerr.V("object", b.object))
	}
	defer safe.Close(ctx, reader)

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read snapshot", goerr.V("object", b.object))
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, goerr.Wrap(err, "failed to decode snapshot", goerr.V("object", b.object))
	}
	return entries, nil
}

func (b *Backend[T]) Save(ctx context.Context, entries map[string]*T) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return goerr.Wrap(err, "failed to encode snapshot")
	}

	w := b.handle().NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write snapshot", goerr.V("object", b.object))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize snapshot", goerr.V("object", b.object))
	}
	return nil
}

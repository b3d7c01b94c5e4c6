package file

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"github.com/viant/afs"
	afsfile "github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// Backend stores a collection as a single JSON document under baseURL.
// baseURL may be a local directory or any scheme afs understands.
type Backend[T any] struct {
	fs      afs.Service
	baseURL string
	name    string
}

var _ interfaces.Backend[struct{}] = &Backend[struct{}]{}

func New[T any](baseURL, name string) *Backend[T] {
	return &Backend[T]{
		fs:      afs.New(),
		baseURL: baseURL,
		name:    name,
	}
}

func (b *Backend[T]) location() string {
	return url.Join(b.baseURL, b.name+".json")
}

func (b *Backend[T]) Load(ctx context.Context) (map[string]*T, error) {
	entries := make(map[string]*T)
	location := b.location()

	exists, err := b.fs.Exists(ctx, location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to check snapshot", goerr.V("location", location))
	}
	if !exists {
		return entries, nil
	}

	data, err := b.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read snapshot", goerr.V("location", location))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return entries, nil
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, goerr.Wrap(err, "failed to decode snapshot", goerr.V("location", location))
	}
	return entries, nil
}

func (b *Backend[T]) Save(ctx context.Context, entries map[string]*T) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode snapshot")
	}

	location := b.location()
	if err := b.fs.Upload(ctx, location, afsfile.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return goerr.Wrap(err, "failed to write snapshot", goerr.V("location", location))
	}
	return nil
}

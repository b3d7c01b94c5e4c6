package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Backend maps a collection snapshot onto one document per entry. T must
// carry firestore struct tags.
type Backend[T any] struct {
	client *firestore.Client
	col    *firestore.CollectionRef
}

var _ interfaces.Backend[struct{}] = &Backend[struct{}]{}

func newBackend[T any](f *Firestore, name string) *Backend[T] {
	return &Backend[T]{
		client: f.client,
		col:    f.collection(name),
	}
}

func (b *Backend[T]) Load(ctx context.Context) (map[string]*T, error) {
	iter := b.col.Documents(ctx)
	defer iter.Stop()

	entries := make(map[string]*T)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents", goerr.V("collection", b.col.ID))
		}

		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal document",
				goerr.V("collection", b.col.ID),
				goerr.V("docID", doc.Ref.ID))
		}
		entries[doc.Ref.ID] = &v
	}

	return entries, nil
}

// Save writes every entry and removes documents whose id is no longer
// present in entries.
func (b *Backend[T]) Save(ctx context.Context, entries map[string]*T) error {
	stale, err := b.staleRefs(ctx, entries)
	if err != nil {
		return err
	}

	bulkWriter := b.client.BulkWriter(ctx)
	defer bulkWriter.End()

	setJobs := make([]*firestore.BulkWriterJob, 0, len(entries))
	for id, v := range entries {
		job, err := bulkWriter.Set(b.col.Doc(id), v)
		if err != nil {
			return goerr.Wrap(err, "failed to add Set operation to bulk writer", goerr.V("id", id))
		}
		setJobs = append(setJobs, job)
	}

	deleteJobs := make([]*firestore.BulkWriterJob, 0, len(stale))
	for _, ref := range stale {
		job, err := bulkWriter.Delete(ref)
		if err != nil {
			return goerr.Wrap(err, "failed to add Delete operation to bulk writer", goerr.V("id", ref.ID))
		}
		deleteJobs = append(deleteJobs, job)
	}

	bulkWriter.Flush()

	for _, job := range setJobs {
		if _, err := job.Results(); err != nil {
			return goerr.Wrap(err, "failed to write snapshot", goerr.V("collection", b.col.ID))
		}
	}
	for _, job := range deleteJobs {
		// already removed by someone else
		if _, err := job.Results(); err != nil && status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to delete stale document", goerr.V("collection", b.col.ID))
		}
	}
	return nil
}

func (b *Backend[T]) staleRefs(ctx context.Context, entries map[string]*T) ([]*firestore.DocumentRef, error) {
	iter := b.col.DocumentRefs(ctx)

	var refs []*firestore.DocumentRef
	for {
		ref, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list documents", goerr.V("collection", b.col.ID))
		}
		if _, ok := entries[ref.ID]; !ok {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

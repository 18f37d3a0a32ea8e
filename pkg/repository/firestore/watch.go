package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/utils/logging"
)

// watch converts Firestore snapshot listener updates into change events.
// Each changed document yields one event carrying its ID, so consumers
// can refresh individual rows instead of reloading the collection.
func (f *Firestore) watch(ctx context.Context, collection string) (<-chan model.ChangeEvent, error) {
	events := make(chan model.ChangeEvent, 32)
	snapIter := f.collection(collection).Snapshots(ctx)

	go func() {
		defer close(events)
		defer snapIter.Stop()

		for {
			snap, err := snapIter.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logging.From(ctx).Error("firestore snapshot listener failed",
					"collection", collection, "error", err.Error())
				return
			}

			for _, change := range snap.Changes {
				event := model.ChangeEvent{
					Collection: collection,
					ID:         change.Doc.Ref.ID,
				}
				switch change.Kind {
				case firestore.DocumentAdded:
					event.Kind = model.ChangeCreated
				case firestore.DocumentModified:
					event.Kind = model.ChangeUpdated
				case firestore.DocumentRemoved:
					event.Kind = model.ChangeDeleted
				}

				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

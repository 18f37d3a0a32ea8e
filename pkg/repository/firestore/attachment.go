package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
)

type attachmentRepository struct {
	fs *Firestore
}

func newAttachmentRepository(fs *Firestore) *attachmentRepository {
	return &attachmentRepository{fs: fs}
}

func (r *attachmentRepository) col() *firestore.CollectionRef {
	return r.fs.collection(types.CollectionAttachments)
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *model.Attachment) (*model.Attachment, error) {
	created := attachment.Clone()
	if created.ID == "" {
		created.ID = types.NewAttachmentID()
	}
	created.CreatedAt = time.Now().UTC()

	if _, err := r.col().Doc(created.ID.String()).Set(ctx, created); err != nil {
		return nil, wrapStoreErr(err, "failed to create attachment", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *attachmentRepository) Get(ctx context.Context, id types.AttachmentID) (*model.Attachment, error) {
	docSnap, err := r.col().Doc(id.String()).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "attachment not found", goerr.V("id", id))
		}
		return nil, wrapStoreErr(err, "failed to get attachment", goerr.V("id", id))
	}

	var a model.Attachment
	if err := docSnap.DataTo(&a); err != nil {
		return nil, goerr.Wrap(err, "failed to decode attachment", goerr.V("id", id))
	}

	return &a, nil
}

func (r *attachmentRepository) ListByAction(ctx context.Context, actionID types.ActionID) ([]*model.Attachment, error) {
	iter := r.col().Where("ActionID", "==", actionID.String()).Documents(ctx)
	defer iter.Stop()

	attachments := make([]*model.Attachment, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapStoreErr(err, "failed to iterate attachments", goerr.V("action_id", actionID))
		}

		var a model.Attachment
		if err := docSnap.DataTo(&a); err != nil {
			return nil, goerr.Wrap(err, "failed to decode attachment", goerr.V("doc_id", docSnap.Ref.ID))
		}

		attachments = append(attachments, &a)
	}

	sort.Slice(attachments, func(i, j int) bool {
		if attachments[i].Order != attachments[j].Order {
			return attachments[i].Order < attachments[j].Order
		}
		return attachments[i].CreatedAt.Before(attachments[j].CreatedAt)
	})
	return attachments, nil
}

func (r *attachmentRepository) Delete(ctx context.Context, id types.AttachmentID) error {
	docRef := r.col().Doc(id.String())

	if _, err := docRef.Get(ctx); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrNotFound, "attachment not found", goerr.V("id", id))
		}
		return wrapStoreErr(err, "failed to check attachment existence", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return wrapStoreErr(err, "failed to delete attachment", goerr.V("id", id))
	}

	return nil
}

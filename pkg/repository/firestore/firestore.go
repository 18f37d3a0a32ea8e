package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/domain/interfaces"
	"github.com/actio-dev/actio/pkg/domain/model"
)

type Firestore struct {
	client        *firestore.Client
	action        *actionRepository
	note          *noteRepository
	attachment    *attachmentRepository
	stage         *stageRepository
	entity        *entityRepository
	notifications *notificationRepository
	prefix        string
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, mainly for tests
// sharing a project.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.prefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if projectID == "" {
		return nil, goerr.New("firestore project ID is required")
	}

	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}

	f.action = newActionRepository(f)
	f.note = newNoteRepository(f)
	f.attachment = newAttachmentRepository(f)
	f.stage = newStageRepository(f)
	f.entity = newEntityRepository(f)
	f.notifications = newNotificationRepository(f)

	return f, nil
}

// collection resolves a logical collection name, applying the prefix
func (f *Firestore) collection(name string) *firestore.CollectionRef {
	if f.prefix != "" {
		name = f.prefix + "_" + name
	}
	return f.client.Collection(name)
}

func (f *Firestore) Action() interfaces.ActionRepository {
	return f.action
}

func (f *Firestore) Note() interfaces.NoteRepository {
	return f.note
}

func (f *Firestore) Attachment() interfaces.AttachmentRepository {
	return f.attachment
}

func (f *Firestore) Stage() interfaces.StageRepository {
	return f.stage
}

func (f *Firestore) Entity() interfaces.EntityRepository {
	return f.entity
}

func (f *Firestore) Notification() interfaces.NotificationRepository {
	return f.notifications
}

func (f *Firestore) Watch(ctx context.Context, collection string) (<-chan model.ChangeEvent, error) {
	return f.watch(ctx, collection)
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

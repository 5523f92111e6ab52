package extract

import (
	"context"
	"time"

	"github.com/suPer8Hu/audios-sac-extract/internal/genesys"
	"github.com/suPer8Hu/audios-sac-extract/internal/store"
	"github.com/suPer8Hu/audios-sac-extract/internal/store/rabbitmq"
)

// Catalog is the subset of the Genesys client the orchestrator drives.
type Catalog interface {
	SearchConversations(ctx context.Context, q genesys.SearchQuery) (*genesys.SearchPage, error)
	RecordingMetadata(ctx context.Context, conversationID string) ([]genesys.RecordingRef, error)
	SubmitBatchDownload(ctx context.Context, refs []genesys.RecordingRef) (*genesys.BatchSubmission, error)
}

type JobStore interface {
	Insert(ctx context.Context, j *store.Job) (*store.Job, error)
	UpdateStatus(ctx context.Context, id uint64, status store.JobStatus) error
	MarkFailed(ctx context.Context, id uint64, errMsg string) error
	SetNotifyID(ctx context.Context, id uint64, notifyID string) error
}

type BatchStore interface {
	Insert(ctx context.Context, b *store.Batch) (*store.Batch, error)
}

type AudioStore interface {
	Insert(ctx context.Context, a *store.Audio) (*store.Audio, error)
	KnownConversations(ctx context.Context, ids []string) (map[string]struct{}, error)
}

type Notifier interface {
	NotifyCompletion(ctx context.Context) (string, error)
}

// Publisher announces persisted batches to downstream stages.
type Publisher interface {
	PublishBatch(ctx context.Context, m rabbitmq.BatchMessage) error
}

// Locker guards a business day against overlapping runs.
type Locker interface {
	Acquire(ctx context.Context, key, owner string, ttl time.Duration) (func(context.Context) error, error)
}

type noopPublisher struct{}

func (noopPublisher) PublishBatch(context.Context, rabbitmq.BatchMessage) error { return nil }

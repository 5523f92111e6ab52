// Package extract pulls the previous day's agent conversations from
// Genesys, submits their recordings for bulk download and records the
// resulting jobs, batches and audios.
package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/suPer8Hu/audios-sac-extract/internal/logger"
	"github.com/suPer8Hu/audios-sac-extract/internal/metrics"
	"github.com/suPer8Hu/audios-sac-extract/internal/notify"
	"github.com/suPer8Hu/audios-sac-extract/internal/store"
	"github.com/suPer8Hu/audios-sac-extract/internal/store/redisstore"
	"github.com/suPer8Hu/audios-sac-extract/internal/window"
	"go.uber.org/zap"
)

type Options struct {
	QueueID        string
	BatchSize      int
	ResolveWorkers int
	Dedupe         bool
	Location       *time.Location
	LockTTL        time.Duration
}

type Deps struct {
	Catalog   Catalog
	Jobs      JobStore
	Batches   BatchStore
	Audios    AudioStore
	Notifier  Notifier
	Publisher Publisher    // optional
	Locker    Locker       // optional
	Metrics   *metrics.Run // optional
	Log       *zap.Logger
	Now       func() time.Time
}

type Service struct {
	catalog   Catalog
	jobs      JobStore
	batches   BatchStore
	audios    AudioStore
	notifier  Notifier
	publisher Publisher
	locker    Locker
	metrics   *metrics.Run
	log       *zap.Logger
	now       func() time.Time
	opts      Options
}

func NewService(d Deps, opts Options) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.ResolveWorkers <= 0 {
		opts.ResolveWorkers = 1
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 2 * time.Hour
	}
	if d.Publisher == nil {
		d.Publisher = noopPublisher{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Service{
		catalog:   d.Catalog,
		jobs:      d.Jobs,
		batches:   d.Batches,
		audios:    d.Audios,
		notifier:  d.Notifier,
		publisher: d.Publisher,
		locker:    d.Locker,
		metrics:   d.Metrics,
		log:       d.Log.With(zap.String("component", "extract")),
		now:       d.Now,
		opts:      opts,
	}
}

// Run performs one daily extraction for the window ending yesterday.
//
// A collection fault marks the job FAILED. An empty window marks the job
// SUCCESS and sends the completion email. Otherwise the candidates are
// dispatched and the job stays PROCESSING for the downstream stages,
// unless dispatch aborts or submits no batch at all, in which case it is
// marked FAILED.
func (s *Service) Run(ctx context.Context) (err error) {
	started := s.now()
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.FromContext(ctx, s.log)

	w := window.Resolve(started, s.opts.Location)
	log.Info("run started", zap.String("start", w.Start), zap.String("end", w.End))

	status := string(store.JobProcessing)
	defer func() {
		// a notify failure after SUCCESS keeps the stored status
		if err != nil && status != string(store.JobSucceeded) {
			status = string(store.JobFailed)
		}
		s.metrics.Finished(status, s.now().Sub(started), err == nil)
	}()

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, redisstore.LockKey(w.Day), runID, s.opts.LockTTL)
		if err != nil {
			return fmt.Errorf("acquire run lock: %w", err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				log.Warn("release run lock", zap.Error(err))
			}
		}()
	}

	candidates, job, err := s.CollectWindow(ctx, w)
	if err != nil {
		if job != nil {
			s.markFailed(ctx, log, job, err)
		}
		return err
	}

	if len(candidates) == 0 {
		if err := s.jobs.UpdateStatus(ctx, job.ID, store.JobSucceeded); err != nil {
			return fmt.Errorf("mark job %d %s: %w", job.ID, store.JobSucceeded, err)
		}
		status = string(store.JobSucceeded)
		log.Info("no conversations to process, job marked SUCCESS", zap.Uint64("job_id", job.ID))

		notifyID, err := s.notifier.NotifyCompletion(ctx)
		if err != nil {
			s.metrics.NotifyFailed()
			return fmt.Errorf("notify completion: %w", err)
		}
		if err := s.jobs.SetNotifyID(ctx, job.ID, notifyID); err != nil {
			log.Warn("record notify id", zap.Uint64("job_id", job.ID), zap.Error(err))
		}
		return nil
	}

	log.Info("conversations to process", zap.Int("count", len(candidates)))
	report, err := s.DispatchDownloads(ctx, candidates, job, w)
	log.Info("dispatch finished",
		zap.Uint64("job_id", job.ID),
		zap.Int("batches", report.Submitted()),
		zap.Int("unresolved", report.Unresolved()),
		zap.String("call_duration", notify.MillisecondsToHMS(totalDuration(candidates))),
	)
	if err == nil && report.Submitted() == 0 {
		err = fmt.Errorf("%w: %d candidates", ErrNothingSubmitted, len(candidates))
	}
	if err != nil {
		s.markFailed(ctx, log, job, err)
		return err
	}
	return nil
}

func (s *Service) markFailed(ctx context.Context, log *zap.Logger, job *store.Job, cause error) {
	// record the failure even when the run was cancelled
	ctx = context.WithoutCancel(ctx)
	if err := s.jobs.MarkFailed(ctx, job.ID, cause.Error()); err != nil {
		log.Error("mark job failed", zap.Uint64("job_id", job.ID), zap.Error(errors.Join(cause, err)))
		return
	}
	log.Error("job marked FAILED", zap.Uint64("job_id", job.ID), zap.Error(cause))
}

func totalDuration(audios []*store.Audio) int64 {
	var ms int64
	for _, a := range audios {
		ms += a.CallDuration
	}
	return ms
}

package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/suPer8Hu/audios-sac-extract/internal/genesys"
	"github.com/suPer8Hu/audios-sac-extract/internal/logger"
	"github.com/suPer8Hu/audios-sac-extract/internal/store"
	"github.com/suPer8Hu/audios-sac-extract/internal/store/rabbitmq"
	"github.com/suPer8Hu/audios-sac-extract/internal/window"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrEmptySubmission is returned when Genesys accepts a bulk download
// request without handing back a batch id.
var ErrEmptySubmission = errors.New("extract: bulk download submission returned no batch id")

// ErrNothingSubmitted is returned by Run when candidates existed but no
// chunk resolved a single recording.
var ErrNothingSubmitted = errors.New("extract: no recordings resolved, nothing submitted")

// Chunk splits items into consecutive slices of at most size elements.
// Concatenating the result yields items in its original order.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end:end])
	}
	return out
}

type ItemFailure struct {
	Index          int
	ConversationID string
	Err            error
}

// ChunkReport describes what happened to one chunk of candidates.
type ChunkReport struct {
	Index          int
	Size           int
	Requests       []genesys.RecordingRef
	Failed         []ItemFailure
	Skipped        bool
	GenesysBatchID string
}

type DispatchReport struct {
	Chunks []*ChunkReport
}

// Submitted counts chunks that produced a batch.
func (r *DispatchReport) Submitted() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, c := range r.Chunks {
		if c.GenesysBatchID != "" {
			n++
		}
	}
	return n
}

// Unresolved counts candidates whose recording could not be resolved.
func (r *DispatchReport) Unresolved() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, c := range r.Chunks {
		n += len(c.Failed)
	}
	return n
}

// DispatchDownloads resolves the recordings of each chunk of candidates,
// submits one bulk download per chunk and persists the batch and its
// audios. Chunks are handled in order. A failed or empty submission stops
// the remaining chunks.
func (s *Service) DispatchDownloads(ctx context.Context, candidates []*store.Audio, job *store.Job, w window.Window) (*DispatchReport, error) {
	report := &DispatchReport{}
	if len(candidates) == 0 {
		return report, nil
	}
	log := logger.FromContext(ctx, s.log).With(zap.Uint64("job_id", job.ID))

	processDate, err := window.ParseLocal(w.Start, s.opts.Location)
	if err != nil {
		return report, fmt.Errorf("parse process date: %w", err)
	}

	for i, chunk := range Chunk(candidates, s.opts.BatchSize) {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		cr := &ChunkReport{Index: i, Size: len(chunk)}
		report.Chunks = append(report.Chunks, cr)
		clog := log.With(zap.Int("chunk", i))

		if err := s.resolveChunk(ctx, clog, chunk, cr); err != nil {
			return report, err
		}
		if len(cr.Requests) == 0 {
			cr.Skipped = true
			clog.Warn("no recordings resolved, chunk skipped", zap.Int("size", cr.Size))
			continue
		}

		sub, err := s.catalog.SubmitBatchDownload(ctx, cr.Requests)
		if err != nil {
			return report, fmt.Errorf("submit chunk %d: %w", i, err)
		}
		if sub == nil || sub.ID == "" {
			return report, fmt.Errorf("chunk %d: %w", i, ErrEmptySubmission)
		}
		cr.GenesysBatchID = sub.ID

		if err := s.persistChunk(ctx, chunk, cr, job, processDate); err != nil {
			return report, err
		}
		s.metrics.BatchSubmitted()
		s.metrics.Unresolved(len(cr.Failed))

		clog.Info("batch submitted",
			zap.String("genesys_batch_id", sub.ID),
			zap.Int("audios", len(chunk)),
			zap.Int("unresolved", len(cr.Failed)),
		)

		msg := rabbitmq.BatchMessage{
			GenesysBatchID: sub.ID,
			JobID:          job.ID,
			AudiosCount:    len(chunk),
			ProcessDate:    processDate,
		}
		if err := s.publisher.PublishBatch(ctx, msg); err != nil {
			clog.Warn("publish batch event", zap.String("genesys_batch_id", sub.ID), zap.Error(err))
		}
	}
	return report, nil
}

// resolveChunk looks up the recording metadata of every candidate in chunk
// with at most ResolveWorkers lookups in flight. Per-item failures are
// recorded on cr; only context cancellation is returned.
func (s *Service) resolveChunk(ctx context.Context, log *zap.Logger, chunk []*store.Audio, cr *ChunkReport) error {
	refs := make([]*genesys.RecordingRef, len(chunk))
	errs := make([]error, len(chunk))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.ResolveWorkers)
	for i, a := range chunk {
		g.Go(func() error {
			got, err := s.catalog.RecordingMetadata(gctx, a.IDConversation)
			if err == nil && len(got) == 0 {
				err = genesys.ErrNoRecordings
			}
			if err != nil {
				errs[i] = err
				return nil
			}
			refs[i] = &got[0]
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, a := range chunk {
		if errs[i] != nil {
			cr.Failed = append(cr.Failed, ItemFailure{Index: i, ConversationID: a.IDConversation, Err: errs[i]})
			log.Warn("recording not resolved",
				zap.String("conversation_id", a.IDConversation),
				zap.Error(errs[i]),
			)
			continue
		}
		cr.Requests = append(cr.Requests, *refs[i])
	}
	return nil
}

func (s *Service) persistChunk(ctx context.Context, chunk []*store.Audio, cr *ChunkReport, job *store.Job, processDate time.Time) error {
	if _, err := s.batches.Insert(ctx, &store.Batch{
		StartDate:      s.now(),
		ProcessDate:    &processDate,
		AudiosCount:    len(chunk),
		Status:         store.BatchPendingGenesys,
		GenesysBatchID: cr.GenesysBatchID,
		JobID:          job.ID,
	}); err != nil {
		return fmt.Errorf("insert batch %s: %w", cr.GenesysBatchID, err)
	}

	failed := make(map[int]struct{}, len(cr.Failed))
	for _, f := range cr.Failed {
		failed[f.Index] = struct{}{}
	}
	for i, a := range chunk {
		batchID := cr.GenesysBatchID
		a.BatchID = &batchID
		if _, ok := failed[i]; ok {
			a.Status = store.AudioNoRecording
		}
		if _, err := s.audios.Insert(ctx, a); err != nil {
			return fmt.Errorf("insert audio %s: %w", a.IDConversation, err)
		}
	}
	return nil
}

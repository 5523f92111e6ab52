package extract

import (
	"context"
	"fmt"

	"github.com/suPer8Hu/audios-sac-extract/internal/genesys"
	"github.com/suPer8Hu/audios-sac-extract/internal/logger"
	"github.com/suPer8Hu/audios-sac-extract/internal/store"
	"github.com/suPer8Hu/audios-sac-extract/internal/window"
	"go.uber.org/zap"
)

// PageError reports a conversation query that failed mid-pagination.
type PageError struct {
	Page      int
	Collected int
	Err       error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("conversation query page %d failed after %d candidates: %v", e.Page, e.Collected, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// CollectWindow creates the run's job and pages through the window's
// conversations, keeping those with an agent participant as PENDING audio
// candidates. Paging ends on an empty page or a page shorter than the
// batch size.
//
// On a query fault the job and the candidates collected so far are
// returned along with a *PageError.
func (s *Service) CollectWindow(ctx context.Context, w window.Window) ([]*store.Audio, *store.Job, error) {
	log := logger.FromContext(ctx, s.log)

	job, err := s.jobs.Insert(ctx, &store.Job{
		CreationDate: s.now().In(s.opts.Location),
		Status:       store.JobProcessing,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create job: %w", err)
	}
	log = log.With(zap.Uint64("job_id", job.ID))

	var (
		out  []*store.Audio
		seen = make(map[string]struct{})
	)
	for page := 1; ; page++ {
		res, err := s.catalog.SearchConversations(ctx, genesys.SearchQuery{
			Interval:   w.Interval(),
			QueueID:    s.opts.QueueID,
			PageNumber: page,
			PageSize:   s.opts.BatchSize,
		})
		if err != nil {
			log.Error("conversation query failed", zap.Int("page", page), zap.Error(err))
			return out, job, &PageError{Page: page, Collected: len(out), Err: err}
		}
		s.metrics.PageFetched()
		if res == nil || len(res.Conversations) == 0 {
			break
		}

		var pageAudios []*store.Audio
		for _, conv := range res.Conversations {
			if !conv.HasAgent() {
				s.metrics.Conversation("excluded")
				log.Debug("conversation excluded, no agent", zap.String("conversation_id", conv.ID))
				continue
			}
			pageAudios = append(pageAudios, &store.Audio{
				IDConversation: conv.ID,
				Status:         store.AudioPending,
				CreationDate:   s.now(),
				CallDate:       conv.Start,
				CallDuration:   genesys.CallDuration(conv, log),
			})
		}

		if s.opts.Dedupe {
			pageAudios, err = s.dropKnown(ctx, log, pageAudios, seen)
			if err != nil {
				return out, job, fmt.Errorf("dedupe page %d: %w", page, err)
			}
		}
		for range pageAudios {
			s.metrics.Conversation("included")
		}
		out = append(out, pageAudios...)

		log.Info("page processed",
			zap.Int("page", page),
			zap.Int("with_agent", len(pageAudios)),
			zap.Int("total", len(res.Conversations)),
		)

		if len(res.Conversations) < s.opts.BatchSize {
			break
		}
	}

	log.Info("collection finished", zap.Int("candidates", len(out)))
	return out, job, nil
}

// dropKnown removes candidates already stored by an earlier run or seen
// earlier in this one.
func (s *Service) dropKnown(ctx context.Context, log *zap.Logger, audios []*store.Audio, seen map[string]struct{}) ([]*store.Audio, error) {
	if len(audios) == 0 {
		return audios, nil
	}
	ids := make([]string, 0, len(audios))
	for _, a := range audios {
		ids = append(ids, a.IDConversation)
	}
	known, err := s.audios.KnownConversations(ctx, ids)
	if err != nil {
		return nil, err
	}

	kept := audios[:0]
	for _, a := range audios {
		if _, ok := known[a.IDConversation]; ok {
			s.metrics.Conversation("duplicate")
			log.Info("conversation already stored, skipped", zap.String("conversation_id", a.IDConversation))
			continue
		}
		if _, ok := seen[a.IDConversation]; ok {
			s.metrics.Conversation("duplicate")
			continue
		}
		seen[a.IDConversation] = struct{}{}
		kept = append(kept, a)
	}
	return kept, nil
}

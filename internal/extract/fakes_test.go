package extract_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/suPer8Hu/audios-sac-extract/internal/genesys"
	"github.com/suPer8Hu/audios-sac-extract/internal/store/rabbitmq"
	"github.com/suPer8Hu/audios-sac-extract/internal/store/redisstore"
)

type fakeCatalog struct {
	mu sync.Mutex

	pages      [][]genesys.Conversation
	pageErrAt  int // 1-indexed page that fails, 0 = never
	recordings map[string][]genesys.RecordingRef
	recErr     map[string]error
	// submissions returned in order; a nil entry means "no batch id"
	submissions []*genesys.BatchSubmission
	submitErr   error

	queries   []genesys.SearchQuery
	submitted [][]genesys.RecordingRef
	lookups   []string
}

func (f *fakeCatalog) SearchConversations(_ context.Context, q genesys.SearchQuery) (*genesys.SearchPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.pageErrAt != 0 && q.PageNumber == f.pageErrAt {
		return nil, errors.New("analytics: 503 service unavailable")
	}
	if q.PageNumber > len(f.pages) {
		return &genesys.SearchPage{}, nil
	}
	convs := f.pages[q.PageNumber-1]
	return &genesys.SearchPage{Conversations: convs, TotalHits: len(convs)}, nil
}

func (f *fakeCatalog) RecordingMetadata(_ context.Context, conversationID string) ([]genesys.RecordingRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, conversationID)
	if err := f.recErr[conversationID]; err != nil {
		return nil, err
	}
	if refs, ok := f.recordings[conversationID]; ok {
		return refs, nil
	}
	return []genesys.RecordingRef{{ConversationID: conversationID, RecordingID: "rec-" + conversationID}}, nil
}

func (f *fakeCatalog) SubmitBatchDownload(_ context.Context, refs []genesys.RecordingRef) (*genesys.BatchSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, refs)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	n := len(f.submitted)
	if n <= len(f.submissions) {
		return f.submissions[n-1], nil
	}
	return &genesys.BatchSubmission{ID: fmt.Sprintf("gb-%d", n)}, nil
}

type fakeNotifier struct {
	calls int
	id    string
	err   error
}

func (n *fakeNotifier) NotifyCompletion(context.Context) (string, error) {
	n.calls++
	if n.err != nil {
		return "", n.err
	}
	return n.id, nil
}

type fakePublisher struct {
	msgs []rabbitmq.BatchMessage
	err  error
}

func (p *fakePublisher) PublishBatch(_ context.Context, m rabbitmq.BatchMessage) error {
	p.msgs = append(p.msgs, m)
	return p.err
}

type fakeLocker struct {
	held     map[string]bool
	released []string
}

func (l *fakeLocker) Acquire(_ context.Context, key, _ string, _ time.Duration) (func(context.Context) error, error) {
	if l.held[key] {
		return nil, fmt.Errorf("%w: %s", redisstore.ErrLocked, key)
	}
	if l.held == nil {
		l.held = map[string]bool{}
	}
	l.held[key] = true
	return func(context.Context) error {
		delete(l.held, key)
		l.released = append(l.released, key)
		return nil
	}, nil
}

func agentConv(id string, start time.Time, handleMs int64) genesys.Conversation {
	return genesys.Conversation{
		ID:    id,
		Start: start,
		Participants: []genesys.Participant{
			{Purpose: "customer"},
			{Purpose: genesys.PurposeAgent, Sessions: []genesys.Session{
				{Metrics: []genesys.Metric{{Name: genesys.MetricHandle, Value: handleMs}}},
			}},
		},
	}
}

func ivrConv(id string, start time.Time) genesys.Conversation {
	return genesys.Conversation{
		ID:           id,
		Start:        start,
		Participants: []genesys.Participant{{Purpose: "customer"}, {Purpose: "ivr"}},
	}
}

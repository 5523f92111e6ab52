// Package genesys talks to the Genesys Cloud analytics and recording APIs.
// SDK models are converted into the plain types below at the boundary so
// callers never deal with pointer-heavy vendor structs.
package genesys

import "time"

const (
	PurposeAgent = "agent"
	MetricHandle = "tHandle"
)

type Metric struct {
	Name  string
	Value int64
}

type Session struct {
	Metrics []Metric
}

type Participant struct {
	Purpose  string
	Sessions []Session
}

type Conversation struct {
	ID           string
	Start        time.Time
	Participants []Participant
}

// HasAgent reports whether any participant has the agent purpose.
func (c Conversation) HasAgent() bool {
	for _, p := range c.Participants {
		if p.Purpose == PurposeAgent {
			return true
		}
	}
	return false
}

type SearchQuery struct {
	Interval   string
	QueueID    string
	PageNumber int // 1-indexed
	PageSize   int
}

type SearchPage struct {
	Conversations []Conversation
	TotalHits     int
}

// RecordingRef is one item of a bulk download request.
type RecordingRef struct {
	ConversationID string
	RecordingID    string
}

type BatchSubmission struct {
	ID string
}

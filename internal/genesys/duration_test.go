package genesys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func agent(metrics ...Metric) Participant {
	return Participant{Purpose: PurposeAgent, Sessions: []Session{{Metrics: metrics}}}
}

func TestCallDuration(t *testing.T) {
	tests := []struct {
		name string
		conv Conversation
		want int64
	}{
		{
			name: "agent with tHandle",
			conv: Conversation{ID: "c1", Participants: []Participant{
				{Purpose: "customer", Sessions: []Session{{Metrics: []Metric{{Name: MetricHandle, Value: 999}}}}},
				agent(Metric{Name: "tTalk", Value: 10}, Metric{Name: MetricHandle, Value: 65000}),
			}},
			want: 65000,
		},
		{
			name: "first match wins across agents",
			conv: Conversation{ID: "c2", Participants: []Participant{
				agent(Metric{Name: MetricHandle, Value: 1000}),
				agent(Metric{Name: MetricHandle, Value: 2000}),
			}},
			want: 1000,
		},
		{
			name: "first match wins across sessions",
			conv: Conversation{ID: "c3", Participants: []Participant{{
				Purpose: PurposeAgent,
				Sessions: []Session{
					{},
					{Metrics: []Metric{{Name: MetricHandle, Value: 3000}}},
					{Metrics: []Metric{{Name: MetricHandle, Value: 4000}}},
				},
			}}},
			want: 3000,
		},
		{
			name: "only customer carries tHandle",
			conv: Conversation{ID: "c4", Participants: []Participant{
				{Purpose: "customer", Sessions: []Session{{Metrics: []Metric{{Name: MetricHandle, Value: 5}}}}},
			}},
			want: 0,
		},
		{
			name: "agent without metrics",
			conv: Conversation{ID: "c5", Participants: []Participant{{Purpose: PurposeAgent}}},
			want: 0,
		},
		{
			name: "no participants",
			conv: Conversation{ID: "c6"},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CallDuration(tt.conv, zap.NewNop())
			assert.Equal(t, tt.want, got)
			// deterministic
			assert.Equal(t, got, CallDuration(tt.conv, nil))
		})
	}
}

func TestCallDuration_WarnsWhenMissing(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	CallDuration(Conversation{ID: "c-missing"}, zap.New(core))

	entries := logs.FilterMessage("tHandle not found").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "c-missing", entries[0].ContextMap()["conversation_id"])
	}
}

func TestHasAgent(t *testing.T) {
	assert.True(t, Conversation{Participants: []Participant{{Purpose: "customer"}, {Purpose: PurposeAgent}}}.HasAgent())
	assert.False(t, Conversation{Participants: []Participant{{Purpose: "customer"}, {Purpose: "ivr"}}}.HasAgent())
	assert.False(t, Conversation{}.HasAgent())
	assert.False(t, Conversation{Participants: []Participant{{Purpose: "Agent"}}}.HasAgent())
}

package genesys

import (
	"fmt"

	"go.uber.org/zap"
)

// CallDuration returns the first tHandle value (milliseconds) found under
// an agent participant's sessions, or 0 when there is none.
func CallDuration(c Conversation, log *zap.Logger) (ms int64) {
	if log == nil {
		log = zap.NewNop()
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("extract call duration",
				zap.String("conversation_id", c.ID),
				zap.Error(fmt.Errorf("panic: %v", r)),
			)
			ms = 0
		}
	}()

	for _, p := range c.Participants {
		if p.Purpose != PurposeAgent {
			continue
		}
		for _, s := range p.Sessions {
			for _, m := range s.Metrics {
				if m.Name == MetricHandle {
					log.Debug("tHandle found", zap.String("conversation_id", c.ID), zap.Int64("ms", m.Value))
					return m.Value
				}
			}
		}
	}

	log.Warn("tHandle not found", zap.String("conversation_id", c.ID))
	return 0
}

package genesys

import (
	sdk "github.com/mypurecloud/platform-client-sdk-go/v157/platformclientv2"
)

func buildQuery(q SearchQuery) sdk.Conversationquery {
	var (
		order     = "asc"
		orderBy   = "conversationStart"
		and       = "and"
		dimension = "dimension"
		queueID   = "queueId"
		matches   = "matches"
	)
	interval := q.Interval
	queue := q.QueueID
	pageNumber := q.PageNumber
	pageSize := q.PageSize

	return sdk.Conversationquery{
		Interval: &interval,
		Order:    &order,
		OrderBy:  &orderBy,
		Paging: &sdk.Pagingspec{
			PageNumber: &pageNumber,
			PageSize:   &pageSize,
		},
		SegmentFilters: &[]sdk.Segmentdetailqueryfilter{{
			VarType: &and,
			Predicates: &[]sdk.Segmentdetailquerypredicate{{
				VarType:   &dimension,
				Dimension: &queueID,
				Operator:  &matches,
				Value:     &queue,
			}},
		}},
	}
}

func fromQueryResponse(resp *sdk.Analyticsconversationqueryresponse) *SearchPage {
	page := &SearchPage{}
	if resp == nil {
		return page
	}
	if resp.TotalHits != nil {
		page.TotalHits = *resp.TotalHits
	}
	if resp.Conversations == nil {
		return page
	}
	page.Conversations = make([]Conversation, 0, len(*resp.Conversations))
	for _, c := range *resp.Conversations {
		page.Conversations = append(page.Conversations, fromConversation(c))
	}
	return page
}

func fromConversation(c sdk.Analyticsconversationwithoutattributes) Conversation {
	out := Conversation{ID: deref(c.ConversationId)}
	if c.ConversationStart != nil {
		out.Start = *c.ConversationStart
	}
	if c.Participants == nil {
		return out
	}
	for _, p := range *c.Participants {
		part := Participant{Purpose: deref(p.Purpose)}
		if p.Sessions != nil {
			for _, s := range *p.Sessions {
				sess := Session{}
				if s.Metrics != nil {
					for _, m := range *s.Metrics {
						metric := Metric{Name: deref(m.Name)}
						if m.Value != nil {
							metric.Value = int64(*m.Value)
						}
						sess.Metrics = append(sess.Metrics, metric)
					}
				}
				part.Sessions = append(part.Sessions, sess)
			}
		}
		out.Participants = append(out.Participants, part)
	}
	return out
}

func fromRecordingMetadata(items []sdk.Recordingmetadata) []RecordingRef {
	out := make([]RecordingRef, 0, len(items))
	for _, r := range items {
		if r.Id == nil {
			continue
		}
		out = append(out, RecordingRef{
			ConversationID: deref(r.ConversationId),
			RecordingID:    *r.Id,
		})
	}
	return out
}

func toBatchSubmission(refs []RecordingRef) sdk.Batchdownloadjobsubmission {
	list := make([]sdk.Batchdownloadrequest, 0, len(refs))
	for _, r := range refs {
		conversationID := r.ConversationID
		recordingID := r.RecordingID
		list = append(list, sdk.Batchdownloadrequest{
			ConversationId: &conversationID,
			RecordingId:    &recordingID,
		})
	}
	return sdk.Batchdownloadjobsubmission{BatchDownloadRequestList: &list}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

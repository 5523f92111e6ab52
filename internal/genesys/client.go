package genesys

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/mypurecloud/platform-client-sdk-go/v157/platformclientv2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNoRecordings is returned when a conversation has no recording metadata.
var ErrNoRecordings = errors.New("genesys: no recordings for conversation")

type Options struct {
	Environment  string // e.g. mypurecloud.com
	ClientID     string
	ClientSecret string
	RateLimit    float64 // requests per second, 0 = unlimited
}

type Client struct {
	analytics *sdk.AnalyticsApi
	recording *sdk.RecordingApi
	limiter   *rate.Limiter
	log       *zap.Logger
}

// NewClient authorizes with client credentials and returns a ready client.
func NewClient(opts Options, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	env := strings.TrimSpace(opts.Environment)
	if env == "" {
		env = "mypurecloud.com"
	}

	cfg := sdk.GetDefaultConfiguration()
	cfg.BasePath = "https://api." + env
	if err := cfg.AuthorizeClientCredentials(opts.ClientID, opts.ClientSecret); err != nil {
		return nil, fmt.Errorf("genesys: authorize client credentials: %w", err)
	}
	log.Info("genesys authentication succeeded", zap.String("environment", env))

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	return &Client{
		analytics: sdk.NewAnalyticsApiWithConfig(cfg),
		recording: sdk.NewRecordingApiWithConfig(cfg),
		limiter:   rate.NewLimiter(limit, 1),
		log:       log,
	}, nil
}

// SearchConversations runs one page of the conversation detail query.
func (c *Client) SearchConversations(ctx context.Context, q SearchQuery) (*SearchPage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, _, err := c.analytics.PostAnalyticsConversationsDetailsQuery(buildQuery(q))
	if err != nil {
		return nil, fmt.Errorf("genesys: conversation query page %d: %w", q.PageNumber, err)
	}
	return fromQueryResponse(resp), nil
}

// RecordingMetadata lists the recordings of a conversation. An empty list
// is reported as ErrNoRecordings.
func (c *Client) RecordingMetadata(ctx context.Context, conversationID string) ([]RecordingRef, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	items, _, err := c.recording.GetConversationRecordingmetadata(conversationID)
	if err != nil {
		return nil, fmt.Errorf("genesys: recording metadata %s: %w", conversationID, err)
	}
	refs := fromRecordingMetadata(items)
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRecordings, conversationID)
	}
	return refs, nil
}

// SubmitBatchDownload posts one bulk download request. A response without
// an id yields (nil, nil).
func (c *Client) SubmitBatchDownload(ctx context.Context, refs []RecordingRef) (*BatchSubmission, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	res, _, err := c.recording.PostRecordingBatchrequests(toBatchSubmission(refs))
	if err != nil {
		return nil, fmt.Errorf("genesys: submit batch download: %w", err)
	}
	if res == nil || res.Id == nil || *res.Id == "" {
		return nil, nil
	}
	return &BatchSubmission{ID: *res.Id}, nil
}

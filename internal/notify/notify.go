// Package notify sends the run completion email through the notification
// service.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/suPer8Hu/audios-sac-extract/internal/window"
	"go.uber.org/zap"
)

const (
	subjectPrefix = "Transcripcion y Analisis de AUDIOS-SAC "
	priority      = "sendinblue"
)

type recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type emailReq struct {
	Title       string      `json:"title"`
	Subject     string      `json:"subject"`
	Priority    string      `json:"priority"`
	HTMLContent string      `json:"htmlContent"`
	To          []recipient `json:"to"`
}

type Notifier struct {
	URL        string
	Recipients []string
	Message    string
	Location   *time.Location
	Client     *http.Client
	Now        func() time.Time

	log *zap.Logger
}

func New(url string, recipients []string, message string, loc *time.Location, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		URL:        url,
		Recipients: recipients,
		Message:    message,
		Location:   loc,
		Client:     &http.Client{Timeout: 30 * time.Second},
		Now:        time.Now,
		log:        log.With(zap.String("component", "notify")),
	}
}

// NotifyCompletion emails the business date of the current window. The
// date is recomputed from the clock rather than taken from the run.
// It returns the id assigned to the notification.
func (n *Notifier) NotifyCompletion(ctx context.Context) (string, error) {
	if n.Client == nil {
		return "", errors.New("notify: http client is nil")
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}

	date := window.Resolve(now(), n.Location).BusinessDate()
	subject := subjectPrefix + date

	to := make([]recipient, 0, len(n.Recipients))
	for _, e := range n.Recipients {
		if e = strings.TrimSpace(e); e != "" {
			to = append(to, recipient{Name: "", Email: e})
		}
	}

	b, err := json.Marshal(emailReq{
		Title:       subject,
		Subject:     subject,
		Priority:    priority,
		HTMLContent: fmt.Sprintf("%s %s.", n.Message, date),
		To:          to,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		n.log.Error("send email", zap.Error(err))
		return "", fmt.Errorf("notify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := strings.TrimSpace(string(body))
		n.log.Error("send email", zap.Int("status", resp.StatusCode), zap.String("body", msg))
		if msg == "" {
			return "", fmt.Errorf("notify: status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("notify: status %d: %s", resp.StatusCode, msg)
	}

	id := ulid.Make().String()
	n.log.Info("email sent", zap.String("notify_id", id), zap.String("business_date", date), zap.Int("recipients", len(to)))
	return id, nil
}

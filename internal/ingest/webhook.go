package ingest

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/AngelCh415/meta-dashboard-go/internal/models"
	"github.com/AngelCh415/meta-dashboard-go/internal/utils"
)

// ErrUnknownFormat means the webhook answered with JSON of an unexpected shape.
var ErrUnknownFormat = errors.New("webhook: unknown response format")

// WebhookRequest mirrors the Insights query so the webhook can forward it to
// Meta with its own credentials.
type WebhookRequest struct {
	Level         string            `json:"level"`
	Fields        string            `json:"fields"`
	DatePreset    string            `json:"date_preset,omitempty"`
	TimeRange     *models.DateRange `json:"time_range,omitempty"`
	TimeIncrement int               `json:"time_increment"`
	Breakdowns    string            `json:"breakdowns,omitempty"`
	Limit         int               `json:"limit"`
}

func BuildWebhookRequest(req models.MetricsRequest) WebhookRequest {
	out := WebhookRequest{
		Level:         string(LevelCampaign),
		Fields:        strings.Join(BaseFields, ","),
		TimeIncrement: 1,
		Limit:         DefaultPageLimit,
	}
	p := Period(req.Period)
	preset, ok := p.DatePreset()
	switch {
	case ok:
		out.DatePreset = preset
	case p == PeriodCustom && req.CustomPeriod != nil:
		out.TimeRange = &models.DateRange{Since: req.CustomPeriod.StartDate, Until: req.CustomPeriod.EndDate}
	default:
		r := DefaultTimeRange
		out.TimeRange = &r
	}
	if req.WantAudience() {
		out.Breakdowns = strings.Join(AudienceBreakdowns, ",")
	}
	return out
}

// WebhookResult holds either raw records or a ready-made envelope.
type WebhookResult struct {
	Records  []models.RawInsightRecord
	Envelope *models.DashboardResponse
}

// SniffWebhookResponse accepts a bare array, {data:[...]}, or an object that
// already carries "success".
func SniffWebhookResponse(body []byte) (WebhookResult, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return WebhookResult{}, ErrUnknownFormat
	}
	switch trimmed[0] {
	case '[':
		var recs []models.RawInsightRecord
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return WebhookResult{}, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
		}
		return WebhookResult{Records: recs}, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return WebhookResult{}, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
		}
		if data, ok := obj["data"]; ok && isArray(data) {
			var recs []models.RawInsightRecord
			if err := json.Unmarshal(data, &recs); err == nil {
				return WebhookResult{Records: recs}, nil
			}
		}
		if _, ok := obj["success"]; ok {
			var env models.DashboardResponse
			if err := json.Unmarshal(trimmed, &env); err != nil {
				return WebhookResult{}, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
			}
			return WebhookResult{Envelope: &env}, nil
		}
	}
	return WebhookResult{}, ErrUnknownFormat
}

// isArray rejects null and scalars, which json.Unmarshal would accept into a slice.
func isArray(raw json.RawMessage) bool {
	b := bytes.TrimSpace(raw)
	return len(b) > 0 && b[0] == '['
}

// Sign is the hex HMAC-SHA256 of body, sent as X-Signature.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

type WebhookClient struct {
	http    HTTPClient
	url     string
	secret  string
	backoff utils.Backoff
	log     *slog.Logger
	metrics *Metrics
}

func NewWebhookClient(c HTTPClient, url, secret string, maxRetries int, log *slog.Logger, m *Metrics) *WebhookClient {
	return &WebhookClient{
		http:    c,
		url:     url,
		secret:  secret,
		backoff: utils.NewBackoff(200*time.Millisecond, maxRetries),
		log:     log,
		metrics: m,
	}
}

func (w *WebhookClient) Fetch(ctx context.Context, req models.MetricsRequest) (WebhookResult, error) {
	if w.url == "" {
		return WebhookResult{}, errors.New("webhook: url not configured")
	}
	payload, err := json.Marshal(BuildWebhookRequest(req))
	if err != nil {
		return WebhookResult{}, err
	}
	start := time.Now()
	body, err := doWithRetry(ctx, w.http, w.backoff, func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Content-Type", "application/json")
		if w.secret != "" {
			r.Header.Set("X-Signature", Sign(w.secret, payload))
		}
		return r, nil
	})
	var res WebhookResult
	if err == nil {
		res, err = SniffWebhookResponse(body)
	}
	w.metrics.observe("webhook", string(LevelCampaign), time.Since(start).Seconds(), len(res.Records), err)
	if err != nil {
		w.log.Warn("webhook fetch failed", slog.String("rid", utils.RID(ctx)), slog.String("err", err.Error()))
		return WebhookResult{}, err
	}
	return res, nil
}

package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/AngelCh415/meta-dashboard-go/internal/models"
	"github.com/AngelCh415/meta-dashboard-go/internal/utils"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// ErrTooManyPages stops a pagination chain that does not end.
var ErrTooManyPages = errors.New("insights: page limit reached")

// retryable reports whether a status is worth another attempt.
func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// doWithRetry sends the request built by newReq until it gets a 2xx, a
// non-retryable status or runs out of attempts. The 2xx body is returned.
func doWithRetry(ctx context.Context, c HTTPClient, bo utils.Backoff, newReq func(context.Context) (*http.Request, error)) ([]byte, error) {
	var body []byte
	err := bo.Do(ctx, func(int) (bool, error) {
		req, err := newReq(ctx)
		if err != nil {
			return false, err
		}
		resp, err := c.Do(req)
		if err != nil {
			var ue *url.Error
			if errors.As(err, &ue) {
				ue.URL = Redact(ue.URL)
			}
			return ctx.Err() == nil, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
		if err != nil {
			return true, fmt.Errorf("read body: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return retryable(resp.StatusCode), parseGraphError(resp.StatusCode, b)
		}
		body = b
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// MetaClient reads the Insights edge of the Graph API.
type MetaClient struct {
	http     HTTPClient
	baseURL  string
	version  string
	maxPages int
	backoff  utils.Backoff
	log      *slog.Logger
	metrics  *Metrics
}

type MetaClientOptions struct {
	BaseURL    string
	Version    string
	MaxPages   int
	MaxRetries int
	RetryBase  time.Duration
}

func NewMetaClient(c HTTPClient, log *slog.Logger, m *Metrics, o MetaClientOptions) *MetaClient {
	if o.BaseURL == "" {
		o.BaseURL = DefaultGraphURL
	}
	if o.Version == "" {
		o.Version = DefaultAPIVersion
	}
	if o.MaxPages <= 0 {
		o.MaxPages = 50
	}
	if o.RetryBase <= 0 {
		o.RetryBase = 200 * time.Millisecond
	}
	return &MetaClient{
		http:     c,
		baseURL:  o.BaseURL,
		version:  o.Version,
		maxPages: o.MaxPages,
		backoff:  utils.NewBackoff(o.RetryBase, o.MaxRetries),
		log:      log,
		metrics:  m,
	}
}

// FetchAll follows paging.next until Meta stops returning it and returns
// every record, or an error. Partial results are never returned.
func (c *MetaClient) FetchAll(ctx context.Context, p InsightsParams) ([]models.RawInsightRecord, error) {
	start := time.Now()
	out, err := c.fetchAll(ctx, p)
	c.metrics.observe("graph", string(p.Level), time.Since(start).Seconds(), len(out), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MetaClient) fetchAll(ctx context.Context, p InsightsParams) ([]models.RawInsightRecord, error) {
	next, err := BuildInsightsURL(c.baseURL, c.version, p)
	if err != nil {
		return nil, err
	}
	out := []models.RawInsightRecord{}
	for page := 0; next != ""; page++ {
		if page >= c.maxPages {
			return nil, fmt.Errorf("%w (%d pages, level %s)", ErrTooManyPages, c.maxPages, p.Level)
		}
		u := next
		c.log.Debug("insights page", slog.String("level", string(p.Level)), slog.Int("page", page), slog.String("url", Redact(u)))
		body, err := doWithRetry(ctx, c.http, c.backoff, func(ctx context.Context) (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		})
		if err != nil {
			return nil, fmt.Errorf("insights %s page %d: %w", p.Level, page, err)
		}
		var pg insightsPage
		if err := json.Unmarshal(body, &pg); err != nil {
			return nil, fmt.Errorf("insights %s page %d: decode: %w", p.Level, page, err)
		}
		if pg.Error != nil {
			pg.Error.Status = http.StatusOK
			return nil, fmt.Errorf("insights %s page %d: %w", p.Level, page, pg.Error)
		}
		out = append(out, pg.Data...)
		next = pg.Paging.Next
	}
	return out, nil
}

package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/AngelCh415/meta-dashboard-go/internal/models"
)

type Level string

const (
	LevelAccount  Level = "account"
	LevelCampaign Level = "campaign"
	LevelAdset    Level = "adset"
	LevelAd       Level = "ad"
)

const (
	DefaultGraphURL   = "https://graph.facebook.com"
	DefaultAPIVersion = "v21.0"
	DefaultPageLimit  = 500
)

// BaseFields is the fixed Insights field set requested at every level.
var BaseFields = []string{
	"campaign_id", "campaign_name",
	"adset_id", "adset_name",
	"ad_id", "ad_name",
	"impressions", "reach", "frequency", "clicks", "spend",
	"cpc", "cpm", "ctr",
	"actions", "cost_per_action_type",
}

// AudienceBreakdowns are requested without time_increment.
var AudienceBreakdowns = []string{"age", "gender"}

type Filter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// InsightsParams describes one Insights query. Exactly one of DatePreset and
// TimeRange should be set.
type InsightsParams struct {
	AccountID     string
	AccessToken   string
	Level         Level
	Fields        []string
	DatePreset    string
	TimeRange     *models.DateRange
	TimeIncrement int
	Breakdowns    []string
	Filtering     []Filter
	Limit         int
}

// BuildInsightsURL renders {base}/{version}/act_{id}/insights?....
func BuildInsightsURL(base, version string, p InsightsParams) (string, error) {
	id := AccountID(p.AccountID)
	if id == "" {
		return "", errors.New("insights: empty account id")
	}
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("insights: bad base url: %w", err)
	}
	u.Path = u.Path + "/" + version + "/act_" + id + "/insights"

	fields := p.Fields
	if len(fields) == 0 {
		fields = BaseFields
	}
	q := url.Values{}
	q.Set("access_token", p.AccessToken)
	q.Set("fields", strings.Join(fields, ","))
	if p.Level != "" {
		q.Set("level", string(p.Level))
	}
	switch {
	case p.TimeRange != nil:
		b, _ := json.Marshal(p.TimeRange)
		q.Set("time_range", string(b))
	case p.DatePreset != "":
		q.Set("date_preset", p.DatePreset)
	}
	if p.TimeIncrement > 0 {
		q.Set("time_increment", strconv.Itoa(p.TimeIncrement))
	}
	if len(p.Breakdowns) > 0 {
		q.Set("breakdowns", strings.Join(p.Breakdowns, ","))
	}
	if len(p.Filtering) > 0 {
		b, err := json.Marshal(p.Filtering)
		if err != nil {
			return "", fmt.Errorf("insights: filtering: %w", err)
		}
		q.Set("filtering", string(b))
	}
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// GraphError is the error object Meta returns alongside non-2xx statuses.
type GraphError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Subcode int    `json:"error_subcode"`
	TraceID string `json:"fbtrace_id"`
}

func (e *GraphError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("graph api: status %d", e.Status)
	}
	return fmt.Sprintf("graph api: status %d code %d: %s", e.Status, e.Code, e.Message)
}

func parseGraphError(status int, body []byte) *GraphError {
	var env struct {
		Error *GraphError `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 256 {
			msg = msg[:256]
		}
		return &GraphError{Status: status, Message: msg}
	}
	env.Error.Status = status
	return env.Error
}

// insightsPage is one page of the Insights edge.
type insightsPage struct {
	Data   []models.RawInsightRecord `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
	Error *GraphError `json:"error"`
}

// Redact hides the access token of a Graph URL for logs and errors.
func Redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparsable url>"
	}
	q := u.Query()
	if q.Has("access_token") {
		q.Set("access_token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

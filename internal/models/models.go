package models

import "github.com/shopspring/decimal"

// Action is one entry of Meta's actions / cost_per_action_type arrays.
type Action struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// RawInsightRecord is one row of the Insights API. Every field may be absent.
type RawInsightRecord struct {
	AccountID    string `json:"account_id,omitempty"`
	AccountName  string `json:"account_name,omitempty"`
	CampaignID   string `json:"campaign_id,omitempty"`
	CampaignName string `json:"campaign_name,omitempty"`
	AdsetID      string `json:"adset_id,omitempty"`
	AdsetName    string `json:"adset_name,omitempty"`
	AdID         string `json:"ad_id,omitempty"`
	AdName       string `json:"ad_name,omitempty"`

	Impressions string `json:"impressions,omitempty"`
	Reach       string `json:"reach,omitempty"`
	Frequency   string `json:"frequency,omitempty"`
	Clicks      string `json:"clicks,omitempty"`
	Spend       string `json:"spend,omitempty"`
	CPC         string `json:"cpc,omitempty"`
	CPM         string `json:"cpm,omitempty"`
	CTR         string `json:"ctr,omitempty"`

	Actions           []Action `json:"actions,omitempty"`
	CostPerActionType []Action `json:"cost_per_action_type,omitempty"`

	DateStart string `json:"date_start,omitempty"`
	DateStop  string `json:"date_stop,omitempty"`

	// breakdowns, only present when requested
	Age    string `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// NormalizedFact is the typed projection of a RawInsightRecord.
type NormalizedFact struct {
	CampaignID   string
	CampaignName string
	AdID         string
	AdName       string
	DateStart    string
	DateStop     string
	Age          string
	Gender       string

	Impressions int64
	Clicks      int64
	Reach       int64
	Leads       int64
	Spend       decimal.Decimal
	CostPerLead decimal.Decimal
}

type AggregateBucket struct {
	Key         string
	Name        string
	CampaignID  string
	Records     int
	Impressions int64
	Clicks      int64
	Reach       int64
	Leads       int64
	Spend       decimal.Decimal
	// ReportedCPL is the upstream cost per lead, kept only for single-record buckets.
	ReportedCPL decimal.Decimal
}

type ComparisonResult struct {
	ImpressionsChange float64 `json:"impressionsChange"`
	ClicksChange      float64 `json:"clicksChange"`
	InvestmentChange  float64 `json:"investmentChange"`
	LeadsChange       float64 `json:"leadsChange"`
	CTRChange         float64 `json:"ctrChange"`
	CPCChange         float64 `json:"cpcChange"`
	CPLChange         float64 `json:"cplChange"`
}

type TrendDirection string

const (
	TrendUp      TrendDirection = "up"
	TrendDown    TrendDirection = "down"
	TrendNeutral TrendDirection = "neutral"
)

type Trend struct {
	Direction TrendDirection `json:"direction"`
	Value     string         `json:"value"`
	Label     string         `json:"label,omitempty"`
	Favorable bool           `json:"favorable"`
}

type KPI struct {
	Label          string  `json:"label"`
	Value          float64 `json:"value"`
	FormattedValue string  `json:"formattedValue"`
	Subtitle       string  `json:"subtitle,omitempty"`
	Trend          *Trend  `json:"trend,omitempty"`
	Estimated      bool    `json:"estimated,omitempty"`
}

type KPISet struct {
	Investment   KPI `json:"investment"`
	Impressions  KPI `json:"impressions"`
	Clicks       KPI `json:"clicks"`
	CTR          KPI `json:"ctr"`
	Leads        KPI `json:"leads"`
	CPL          KPI `json:"cpl"`
	CPC          KPI `json:"cpc"`
	Appointments KPI `json:"appointments"`
	ROAS         KPI `json:"roas"`
}

type PerformancePoint struct {
	Date        string  `json:"date"`
	ISODate     string  `json:"isoDate"`
	Investment  float64 `json:"investment"`
	Clicks      int64   `json:"clicks"`
	Leads       int64   `json:"leads"`
	Impressions int64   `json:"impressions"`
	CTR         float64 `json:"ctr"`
	CPL         float64 `json:"cpl"`
}

type EntityRow struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	CampaignID          string  `json:"campaignId,omitempty"`
	Investment          float64 `json:"investment"`
	InvestmentFormatted string  `json:"investmentFormatted"`
	Clicks              int64   `json:"clicks"`
	Impressions         int64   `json:"impressions"`
	Leads               int64   `json:"leads"`
	CPL                 float64 `json:"cpl"`
	CPLFormatted        string  `json:"cplFormatted"`
	CTR                 float64 `json:"ctr"`
	CTRFormatted        string  `json:"ctrFormatted"`
	CPC                 float64 `json:"cpc"`
	Records             int     `json:"records"`
}

type Funnel struct {
	Impressions  int64 `json:"impressions"`
	Clicks       int64 `json:"clicks"`
	Leads        int64 `json:"leads"`
	Appointments int64 `json:"appointments"`
	Conversions  int64 `json:"conversions"`
}

type InsightType string

const (
	InsightSuccess InsightType = "success"
	InsightWarning InsightType = "warning"
	InsightInfo    InsightType = "info"
	InsightTip     InsightType = "tip"
)

type Insight struct {
	ID          string      `json:"id"`
	Type        InsightType `json:"type"`
	Icon        string      `json:"icon"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Priority    int         `json:"priority"`
}

type GenderSplit struct {
	Male   float64 `json:"male"`
	Female float64 `json:"female"`
	Other  float64 `json:"other"`
}

type AgeShare struct {
	Range      string  `json:"range"`
	Percentage float64 `json:"percentage"`
}

type Demographics struct {
	Gender    GenderSplit `json:"gender"`
	AgeRanges []AgeShare  `json:"ageRanges"`
}

// Audience carries only breakdowns backed by upstream data. Devices, best
// hours/days and locations stay nil until a breakdown feeds them.
type Audience struct {
	Demographics Demographics    `json:"demographics"`
	Devices      *DeviceSplit    `json:"devices,omitempty"`
	BestHours    []SlotScore     `json:"bestHours,omitempty"`
	BestDays     []SlotScore     `json:"bestDays,omitempty"`
	Locations    []LocationShare `json:"locations,omitempty"`
}

type DeviceSplit struct {
	Mobile  float64 `json:"mobile"`
	Desktop float64 `json:"desktop"`
	Tablet  float64 `json:"tablet"`
}

type SlotScore struct {
	Slot        string  `json:"slot"`
	Performance float64 `json:"performance"`
}

type LocationShare struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

type Dashboard struct {
	KPIs        KPISet             `json:"kpis"`
	Performance []PerformancePoint `json:"performance"`
	Ads         []EntityRow        `json:"ads"`
	Funnel      Funnel             `json:"funnel"`
	Insights    []Insight          `json:"insights,omitempty"`
	Audience    *Audience          `json:"audience,omitempty"`
	Comparison  *ComparisonResult  `json:"comparison,omitempty"`
}

type ResponseMeta struct {
	PeriodStart    string `json:"periodStart"`
	PeriodEnd      string `json:"periodEnd"`
	TotalCampaigns int    `json:"totalCampaigns"`
	TotalAds       int    `json:"totalAds"`
	TotalRecords   int    `json:"totalRecords"`
	GeneratedAt    string `json:"generatedAt"`
}

type ErrorCode string

const (
	ErrNoData              ErrorCode = "NO_DATA"
	ErrMissingUserID       ErrorCode = "MISSING_USER_ID"
	ErrMissingPeriod       ErrorCode = "MISSING_PERIOD"
	ErrMissingAdAccountID  ErrorCode = "MISSING_AD_ACCOUNT_ID"
	ErrMissingAccessToken  ErrorCode = "MISSING_ACCESS_TOKEN"
	ErrMissingCustomPeriod ErrorCode = "MISSING_CUSTOM_PERIOD"
	ErrUnknownFormat       ErrorCode = "UNKNOWN_FORMAT"
	ErrFetch               ErrorCode = "FETCH_ERROR"
	ErrInternal            ErrorCode = "INTERNAL_ERROR"
)

type ErrorInfo struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// DashboardResponse is the envelope returned to the UI for success and failure alike.
type DashboardResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Data    *Dashboard    `json:"data,omitempty"`
	Meta    *ResponseMeta `json:"meta,omitempty"`
	Error   *ErrorInfo    `json:"error,omitempty"`
}

func Failure(code ErrorCode, message, details string) DashboardResponse {
	return DashboardResponse{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message, Details: details},
	}
}

type DateRange struct {
	Since string `json:"since"`
	Until string `json:"until"`
}

type CustomPeriod struct {
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
}

// MetricsRequest is the body accepted by POST /api/metrics. Credentials are
// skipped by validation when a webhook does the fetching.
type MetricsRequest struct {
	UserID            string        `json:"userId" validate:"required"`
	AccountID         string        `json:"accountId,omitempty"`
	AdAccountID       string        `json:"adAccountId,omitempty" validate:"required"`
	AccessToken       string        `json:"accessToken,omitempty" validate:"required"`
	Period            string        `json:"period" validate:"required"`
	CustomPeriod      *CustomPeriod `json:"customPeriod,omitempty" validate:"required_if=Period custom"`
	CampaignID        string        `json:"campaignId,omitempty"`
	CampaignName      string        `json:"campaignName,omitempty"`
	Platform          string        `json:"platform,omitempty"`
	IncludeAds        *bool         `json:"includeAds,omitempty"`
	IncludeInsights   *bool         `json:"includeInsights,omitempty"`
	IncludeAudience   *bool         `json:"includeAudience,omitempty"`
	IncludeComparison *bool         `json:"includeComparison,omitempty"`
	Timezone          string        `json:"timezone,omitempty"`
	RequestedAt       string        `json:"requestedAt,omitempty"`
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func (r MetricsRequest) WantAds() bool        { return boolOr(r.IncludeAds, true) }
func (r MetricsRequest) WantInsights() bool   { return boolOr(r.IncludeInsights, true) }
func (r MetricsRequest) WantAudience() bool   { return boolOr(r.IncludeAudience, false) }
func (r MetricsRequest) WantComparison() bool { return boolOr(r.IncludeComparison, true) }

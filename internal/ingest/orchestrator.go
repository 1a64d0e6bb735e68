package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AngelCh415/meta-dashboard-go/internal/metrics"
	"github.com/AngelCh415/meta-dashboard-go/internal/models"
)

// ErrPanic marks a fetch that panicked instead of failing cleanly.
var ErrPanic = errors.New("fetch panicked")

// InsightsFetcher returns every record of one query or an error.
type InsightsFetcher interface {
	FetchAll(ctx context.Context, p InsightsParams) ([]models.RawInsightRecord, error)
}

// Batch is everything fetched for one dashboard request.
type Batch struct {
	Campaigns   []models.RawInsightRecord
	Ads         []models.RawInsightRecord
	Audience    []models.RawInsightRecord
	Previous    []models.RawInsightRecord
	HasPrevious bool
	Period      models.DateRange
}

// Input adapts the batch for the assembler, applying the request's include flags.
func (b *Batch) Input(req models.MetricsRequest) metrics.Input {
	period := b.Period
	return metrics.Input{
		Campaigns:    b.Campaigns,
		Ads:          b.Ads,
		Audience:     b.Audience,
		Previous:     b.Previous,
		HasPrevious:  b.HasPrevious,
		Period:       &period,
		SkipAds:      !req.WantAds(),
		SkipInsights: !req.WantInsights(),
	}
}

type Orchestrator struct {
	src       InsightsFetcher
	log       *slog.Logger
	defaultTZ string
	pageLimit int
	now       func() time.Time
}

func NewOrchestrator(src InsightsFetcher, log *slog.Logger, defaultTZ string, pageLimit int) *Orchestrator {
	return &Orchestrator{src: src, log: log, defaultTZ: defaultTZ, pageLimit: pageLimit, now: time.Now}
}

// baseParams carries the period selection shared by every call.
func (o *Orchestrator) baseParams(req models.MetricsRequest, now time.Time) InsightsParams {
	p := InsightsParams{
		AccountID:   req.AdAccountID,
		AccessToken: req.AccessToken,
		Fields:      BaseFields,
		Limit:       o.pageLimit,
	}
	period := Period(req.Period)
	if preset, ok := period.DatePreset(); ok {
		p.DatePreset = preset
	} else {
		r := CurrentRange(period, req.CustomPeriod, now)
		p.TimeRange = &r
	}
	if req.CampaignID != "" {
		p.Filtering = []Filter{{Field: "campaign.id", Operator: "EQUAL", Value: req.CampaignID}}
	}
	return p
}

// Fetch runs the campaign, ad, audience and previous-period queries in
// parallel. Any failure cancels the rest.
func (o *Orchestrator) Fetch(ctx context.Context, req models.MetricsRequest) (*Batch, error) {
	now := o.now().In(Location(req.Timezone, o.defaultTZ))
	period := Period(req.Period)
	base := o.baseParams(req, now)

	b := &Batch{Period: CurrentRange(period, req.CustomPeriod, now)}
	g, gctx := errgroup.WithContext(ctx)
	fetch := func(name string, p InsightsParams, dst *[]models.RawInsightRecord) {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%s: %w: %v", name, ErrPanic, r)
				}
			}()
			recs, err := o.src.FetchAll(gctx, p)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = recs
			return nil
		})
	}

	campaign := base
	campaign.Level = LevelCampaign
	campaign.TimeIncrement = 1
	fetch("campaigns", campaign, &b.Campaigns)

	if req.WantAds() {
		ad := base
		ad.Level = LevelAd
		fetch("ads", ad, &b.Ads)
	}

	if req.WantAudience() {
		aud := base
		aud.Level = LevelCampaign
		aud.Breakdowns = AudienceBreakdowns
		fetch("audience", aud, &b.Audience)
	}

	if req.WantComparison() {
		if prevRange, ok := PreviousRange(period, req.CustomPeriod, now); ok {
			prev := base
			prev.Level = LevelCampaign
			prev.DatePreset = ""
			prev.TimeRange = &prevRange
			prev.TimeIncrement = 1
			b.HasPrevious = true
			fetch("previous period", prev, &b.Previous)
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	o.log.Info("insights fetched",
		slog.String("period", req.Period),
		slog.Int("campaign_rows", len(b.Campaigns)),
		slog.Int("ad_rows", len(b.Ads)),
		slog.Int("audience_rows", len(b.Audience)),
		slog.Int("previous_rows", len(b.Previous)))
	return b, nil
}

package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/meta-dashboard-go/internal/models"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls []InsightsParams
	fn    func(p InsightsParams) ([]models.RawInsightRecord, error)
}

func (f *fakeFetcher) FetchAll(_ context.Context, p InsightsParams) ([]models.RawInsightRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, p)
	f.mu.Unlock()
	return f.fn(p)
}

// key identifies a call by what distinguishes the four queries.
func key(p InsightsParams) string {
	switch {
	case len(p.Breakdowns) > 0:
		return "audience"
	case p.Level == LevelAd:
		return "ads"
	case p.DatePreset == "" && p.TimeRange != nil && p.TimeRange.Since == "2024-06-01":
		return "previous"
	}
	return "campaigns"
}

func newTestOrchestrator(f InsightsFetcher) *Orchestrator {
	o := NewOrchestrator(f, discardLogger(), "America/Sao_Paulo", 500)
	o.now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	return o
}

func TestOrchestratorFetchesEveryLevel(t *testing.T) {
	f := &fakeFetcher{fn: func(p InsightsParams) ([]models.RawInsightRecord, error) {
		return []models.RawInsightRecord{{CampaignID: key(p)}}, nil
	}}
	yes := true
	req := validRequest()
	req.IncludeAudience = &yes
	req.CampaignID = "c9"

	b, err := newTestOrchestrator(f).Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "campaigns", b.Campaigns[0].CampaignID)
	assert.Equal(t, "ads", b.Ads[0].CampaignID)
	assert.Equal(t, "audience", b.Audience[0].CampaignID)
	assert.Equal(t, "previous", b.Previous[0].CampaignID)
	assert.True(t, b.HasPrevious)
	assert.Equal(t, models.DateRange{Since: "2024-06-08", Until: "2024-06-14"}, b.Period)

	require.Len(t, f.calls, 4)
	for _, p := range f.calls {
		assert.Equal(t, "act_123", p.AccountID)
		assert.Equal(t, 500, p.Limit)
		require.Len(t, p.Filtering, 1)
		assert.Equal(t, "c9", p.Filtering[0].Value)
		switch key(p) {
		case "campaigns":
			assert.Equal(t, "last_7d", p.DatePreset)
			assert.Equal(t, 1, p.TimeIncrement)
		case "audience":
			assert.Equal(t, 0, p.TimeIncrement)
			assert.Equal(t, LevelCampaign, p.Level)
		case "previous":
			assert.Equal(t, "2024-06-07", p.TimeRange.Until)
		}
	}
}

func TestOrchestratorHonoursIncludeFlags(t *testing.T) {
	f := &fakeFetcher{fn: func(InsightsParams) ([]models.RawInsightRecord, error) { return nil, nil }}
	no := false
	req := validRequest()
	req.IncludeAds, req.IncludeComparison = &no, &no

	b, err := newTestOrchestrator(f).Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, b.HasPrevious)
	require.Len(t, f.calls, 1)
	assert.Equal(t, LevelCampaign, f.calls[0].Level)

	in := b.Input(req)
	assert.True(t, in.SkipAds)
	assert.False(t, in.SkipInsights)
}

func TestOrchestratorUnknownPeriodUsesDefaultRange(t *testing.T) {
	f := &fakeFetcher{fn: func(InsightsParams) ([]models.RawInsightRecord, error) { return nil, nil }}
	req := validRequest()
	req.Period = "sometime"

	b, err := newTestOrchestrator(f).Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, b.HasPrevious)
	assert.Equal(t, DefaultTimeRange, b.Period)
	for _, p := range f.calls {
		require.NotNil(t, p.TimeRange)
		assert.Equal(t, DefaultTimeRange, *p.TimeRange)
	}
}

func TestOrchestratorFailsWhole(t *testing.T) {
	boom := errors.New("boom")
	f := &fakeFetcher{fn: func(p InsightsParams) ([]models.RawInsightRecord, error) {
		if p.Level == LevelAd {
			return nil, boom
		}
		return []models.RawInsightRecord{{CampaignID: "c1"}}, nil
	}}
	b, err := newTestOrchestrator(f).Fetch(context.Background(), validRequest())
	assert.Nil(t, b)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "ads")
}

func TestOrchestratorRecoversPanics(t *testing.T) {
	f := &fakeFetcher{fn: func(InsightsParams) ([]models.RawInsightRecord, error) { panic("nil map") }}
	_, err := newTestOrchestrator(f).Fetch(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrPanic)
}

package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/meta-dashboard-go/internal/metrics"
	"github.com/AngelCh415/meta-dashboard-go/internal/models"
)

func graphService(fn func(InsightsParams) ([]models.RawInsightRecord, error)) *Service {
	o := newTestOrchestrator(&fakeFetcher{fn: fn})
	return NewGraphService(o, metrics.NewAssembler(metrics.DefaultEstimates), discardLogger())
}

func TestServiceValidationFailure(t *testing.T) {
	s := graphService(func(InsightsParams) ([]models.RawInsightRecord, error) {
		t.Fatal("fetch must not run")
		return nil, nil
	})
	resp := s.Dashboard(context.Background(), models.MetricsRequest{UserID: "u1"})
	assert.False(t, resp.Success)
	assert.Equal(t, models.ErrMissingPeriod, resp.Error.Code)
}

func TestServiceFetchError(t *testing.T) {
	s := graphService(func(InsightsParams) ([]models.RawInsightRecord, error) {
		return nil, &GraphError{Status: 400, Code: 190, Message: "Invalid OAuth access token."}
	})
	resp := s.Dashboard(context.Background(), validRequest())
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, models.ErrFetch, resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "Invalid OAuth")
}

func TestServicePanicIsInternal(t *testing.T) {
	s := graphService(func(InsightsParams) ([]models.RawInsightRecord, error) { panic("boom") })
	resp := s.Dashboard(context.Background(), validRequest())
	assert.Equal(t, models.ErrInternal, resp.Error.Code)
}

func TestServiceNoData(t *testing.T) {
	s := graphService(func(InsightsParams) ([]models.RawInsightRecord, error) { return []models.RawInsightRecord{}, nil })
	resp := s.Dashboard(context.Background(), validRequest())
	assert.Equal(t, models.ErrNoData, resp.Error.Code)
}

func TestServiceSuccess(t *testing.T) {
	s := graphService(func(p InsightsParams) ([]models.RawInsightRecord, error) {
		spend := "150"
		if key(p) == "previous" {
			spend = "100"
		}
		return []models.RawInsightRecord{{CampaignID: "c1", CampaignName: "Promo", DateStart: "2024-06-10", Spend: spend}}, nil
	})
	resp := s.Dashboard(context.Background(), validRequest())
	require.True(t, resp.Success)
	require.NotNil(t, resp.Data.Comparison)
	assert.InDelta(t, 50, resp.Data.Comparison.InvestmentChange, 1e-9)
	assert.Equal(t, "2024-06-08", resp.Meta.PeriodStart)
}

func TestServiceWebhookModes(t *testing.T) {
	bodies := map[string]string{
		"records":  `{"data":[{"campaign_id":"c1","date_start":"2024-02-01","spend":"10"}]}`,
		"envelope": `{"success":false,"error":{"code":"NO_DATA","message":"vazio"}}`,
		"odd":      `{"hello":"world"}`,
		"nulldata": `{"data":null}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Query().Get("mode")]
		if !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	asm := metrics.NewAssembler(metrics.DefaultEstimates)
	svc := func(mode string) *Service {
		c := NewWebhookClient(NewHTTPClient(2*time.Second), srv.URL+"?mode="+mode, "", 0, discardLogger(), nil)
		return NewWebhookService(c, asm, discardLogger())
	}
	req := models.MetricsRequest{UserID: "u1", Period: "custom", CustomPeriod: &models.CustomPeriod{StartDate: "2024-02-01", EndDate: "2024-02-29"}}

	resp := svc("records").Dashboard(context.Background(), req)
	require.True(t, resp.Success)
	assert.Equal(t, "2024-02-29", resp.Meta.PeriodEnd)

	resp = svc("envelope").Dashboard(context.Background(), req)
	assert.Equal(t, models.ErrNoData, resp.Error.Code)
	assert.Equal(t, "vazio", resp.Error.Message)

	resp = svc("odd").Dashboard(context.Background(), req)
	assert.Equal(t, models.ErrUnknownFormat, resp.Error.Code)

	resp = svc("nulldata").Dashboard(context.Background(), req)
	assert.Equal(t, models.ErrUnknownFormat, resp.Error.Code)

	resp = svc("down").Dashboard(context.Background(), req)
	assert.Equal(t, models.ErrFetch, resp.Error.Code)
}

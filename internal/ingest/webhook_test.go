package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/meta-dashboard-go/internal/models"
)

func TestSniffWebhookResponse(t *testing.T) {
	res, err := SniffWebhookResponse([]byte(` [{"campaign_id":"c1"},{"campaign_id":"c2"}]`))
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)

	res, err = SniffWebhookResponse([]byte(`{"data":[{"campaign_id":"c1"}],"paging":{}}`))
	require.NoError(t, err)
	assert.Len(t, res.Records, 1)

	res, err = SniffWebhookResponse([]byte(`{"success":false,"error":{"code":"NO_DATA","message":"x"}}`))
	require.NoError(t, err)
	require.NotNil(t, res.Envelope)
	assert.Equal(t, models.ErrNoData, res.Envelope.Error.Code)

	for _, body := range []string{``, `"text"`, `{"foo":1}`, `{"data":"nope"}`, `[1,2`, `{"data":null}`, `{"data": null, "paging":{}}`} {
		_, err := SniffWebhookResponse([]byte(body))
		assert.ErrorIs(t, err, ErrUnknownFormat, body)
	}
}

func TestBuildWebhookRequest(t *testing.T) {
	r := BuildWebhookRequest(models.MetricsRequest{Period: "last30"})
	assert.Equal(t, "campaign", r.Level)
	assert.Equal(t, "last_30d", r.DatePreset)
	assert.Nil(t, r.TimeRange)
	assert.Equal(t, 1, r.TimeIncrement)
	assert.Equal(t, 500, r.Limit)
	assert.Empty(t, r.Breakdowns)

	yes := true
	r = BuildWebhookRequest(models.MetricsRequest{
		Period:          "custom",
		CustomPeriod:    &models.CustomPeriod{StartDate: "2024-02-01", EndDate: "2024-02-10"},
		IncludeAudience: &yes,
	})
	assert.Equal(t, &models.DateRange{Since: "2024-02-01", Until: "2024-02-10"}, r.TimeRange)
	assert.Equal(t, "age,gender", r.Breakdowns)

	r = BuildWebhookRequest(models.MetricsRequest{})
	assert.Equal(t, &DefaultTimeRange, r.TimeRange)
}

func TestWebhookClientSignsBody(t *testing.T) {
	var gotSig, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotSig = r.Header.Get("X-Signature")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		fmt.Fprint(w, `[{"campaign_id":"c1","spend":"10"}]`)
	}))
	defer srv.Close()

	c := NewWebhookClient(NewHTTPClient(2*time.Second), srv.URL, "shh", 0, discardLogger(), NewMetrics(nil))
	res, err := c.Fetch(context.Background(), models.MetricsRequest{Period: "today"})
	require.NoError(t, err)
	assert.Len(t, res.Records, 1)
	assert.Equal(t, Sign("shh", []byte(gotBody)), gotSig)

	var sent WebhookRequest
	require.NoError(t, json.Unmarshal([]byte(gotBody), &sent))
	assert.Equal(t, "today", sent.DatePreset)
}

func TestWebhookClientRetriesThenFails(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewWebhookClient(NewHTTPClient(2*time.Second), srv.URL, "", 1, discardLogger(), nil)
	_, err := c.Fetch(context.Background(), models.MetricsRequest{Period: "today"})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestSignIsStable(t *testing.T) {
	assert.Equal(t, Sign("k", []byte("body")), Sign("k", []byte("body")))
	assert.NotEqual(t, Sign("k", []byte("body")), Sign("other", []byte("body")))
	assert.Len(t, Sign("k", nil), 64)
}

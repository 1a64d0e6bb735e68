package metrics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/meta-dashboard-go/internal/models"
)

func sampleFacts() []models.NormalizedFact {
	raw := []models.RawInsightRecord{
		{CampaignID: "c1", CampaignName: "Promo", DateStart: "2024-06-01", Impressions: "1000", Clicks: "50", Spend: "0.1"},
		{CampaignID: "c1", CampaignName: "Promo B", DateStart: "2024-06-02", Impressions: "500", Clicks: "20", Spend: "0.2"},
		{CampaignID: "c2", CampaignName: "Brand", DateStart: "2024-06-01", Impressions: "300", Clicks: "3", Spend: "0.3"},
		{CampaignID: "c2", AdID: "a9", AdName: "Video", DateStart: "2024-06-02", Impressions: "10", Clicks: "1", Spend: "33.33"},
		{DateStart: "2024-06-03", Impressions: "7", Spend: "1.01"},
	}
	for i := range raw {
		raw[i].Actions = []models.Action{{ActionType: "lead", Value: "1"}}
	}
	return NormalizeAll(raw)
}

func TestAggregateOrderIndependent(t *testing.T) {
	facts := sampleFacts()
	wantTotals := Totals(facts)
	wantEntity := Aggregate(facts, ByEntity)
	wantDate := Aggregate(facts, ByDate)

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]models.NormalizedFact(nil), facts...)
		rnd.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := Totals(shuffled)
		assert.True(t, wantTotals.Spend.Equal(got.Spend))
		assert.Equal(t, wantTotals.Impressions, got.Impressions)

		for _, grouping := range []struct {
			want map[string]*models.AggregateBucket
			fn   KeyFunc
		}{{wantEntity, ByEntity}, {wantDate, ByDate}} {
			gotMap := Aggregate(shuffled, grouping.fn)
			require.Equal(t, SortedKeys(grouping.want), SortedKeys(gotMap))
			for k, w := range grouping.want {
				g := gotMap[k]
				assert.Equal(t, w.Name, g.Name)
				assert.Equal(t, w.Clicks, g.Clicks)
				assert.Equal(t, w.Leads, g.Leads)
				assert.True(t, w.Spend.Equal(g.Spend), k)
			}
		}
	}
}

func TestAggregateGroupsAndSkips(t *testing.T) {
	facts := sampleFacts()

	byCampaign := Aggregate(facts, ByCampaign)
	require.Len(t, byCampaign, 2)
	c1 := byCampaign["c1"]
	assert.Equal(t, int64(1500), c1.Impressions)
	assert.Equal(t, int64(70), c1.Clicks)
	assert.Equal(t, int64(2), c1.Leads)
	assert.Equal(t, "0.3", c1.Spend.String())
	assert.Equal(t, "Promo", c1.Name)
	assert.Equal(t, 2, c1.Records)

	byEntity := Aggregate(facts, ByEntity)
	assert.Contains(t, byEntity, "a9")
	assert.Equal(t, "Video", byEntity["a9"].Name)
	assert.Equal(t, "c2", byEntity["a9"].CampaignID)

	totals := Totals(facts)
	assert.Equal(t, 5, totals.Records)
	assert.Equal(t, "34.94", totals.Spend.String())
}

func TestAggregateReportedCPLOnlyForSingleRecord(t *testing.T) {
	facts := NormalizeAll([]models.RawInsightRecord{
		{CampaignID: "c1", CostPerActionType: []models.Action{{ActionType: "lead", Value: "12.5"}}},
		{CampaignID: "c2", CostPerActionType: []models.Action{{ActionType: "lead", Value: "4"}}},
		{CampaignID: "c2", CostPerActionType: []models.Action{{ActionType: "lead", Value: "6"}}},
	})
	m := Aggregate(facts, ByCampaign)
	assert.Equal(t, "12.5", m["c1"].ReportedCPL.String())
	assert.True(t, m["c2"].ReportedCPL.IsZero())
}

func TestTotalsEmpty(t *testing.T) {
	tot := Totals(nil)
	assert.Equal(t, 0, tot.Records)
	assert.True(t, tot.Spend.IsZero())
}

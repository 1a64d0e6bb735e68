package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/meta-dashboard-go/internal/models"
)

func ids(in []models.Insight) []string {
	out := make([]string, 0, len(in))
	for _, i := range in {
		out = append(out, i.ID)
	}
	return out
}

func TestInsightsDefaultWhenNothingFires(t *testing.T) {
	for _, c := range []*models.ComparisonResult{nil, {}, {CTRChange: 9, CPCChange: 15, InvestmentChange: 20}} {
		got := Insights(c)
		require.Len(t, got, 1)
		assert.Equal(t, "default", got[0].ID)
		assert.Equal(t, models.InsightTip, got[0].Type)
		assert.Equal(t, 5, got[0].Priority)
	}
}

func TestInsightsRulesAndOrder(t *testing.T) {
	got := Insights(&models.ComparisonResult{
		CTRChange:        -15,
		CPCChange:        25,
		InvestmentChange: 30,
		LeadsChange:      11,
	})
	assert.Equal(t, []string{"ctr-down", "cpc-up", "leads-up", "spend-up"}, ids(got))
	assert.Equal(t, "Sua taxa de cliques caiu 15%. Considere revisar os criativos.", got[0].Description)
	assert.NotContains(t, ids(got), "default")
}

func TestInsightsCTRUp(t *testing.T) {
	got := Insights(&models.ComparisonResult{CTRChange: 12.6, CPCChange: -11})
	assert.Equal(t, []string{"ctr-up", "cpc-down"}, ids(got))
	assert.Equal(t, "CTR em alta!", got[0].Title)
	assert.Equal(t, "Sua taxa de cliques aumentou 13% em relação ao período anterior.", got[0].Description)
	assert.Equal(t, models.InsightSuccess, got[1].Type)
}

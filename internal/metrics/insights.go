package metrics

import (
	"fmt"
	"math"
	"sort"

	"github.com/AngelCh415/meta-dashboard-go/internal/models"
)

var defaultInsight = models.Insight{
	ID:          "default",
	Type:        models.InsightTip,
	Icon:        "fa-solid fa-lightbulb",
	Title:       "Continue monitorando",
	Description: "Acompanhe suas métricas diariamente para identificar oportunidades de otimização.",
	Priority:    5,
}

// Insights applies the fixed rule set to a comparison. A nil comparison, or
// one where no rule fires, yields the single default tip.
func Insights(c *models.ComparisonResult) []models.Insight {
	var out []models.Insight
	if c != nil {
		switch {
		case c.CTRChange > 10:
			out = append(out, models.Insight{
				ID: "ctr-up", Type: models.InsightSuccess, Icon: "fa-solid fa-arrow-trend-up",
				Title:       "CTR em alta!",
				Description: fmt.Sprintf("Sua taxa de cliques aumentou %s%% em relação ao período anterior.", whole(c.CTRChange)),
				Priority:    1,
			})
		case c.CTRChange < -10:
			out = append(out, models.Insight{
				ID: "ctr-down", Type: models.InsightWarning, Icon: "fa-solid fa-arrow-trend-down",
				Title:       "CTR em queda",
				Description: fmt.Sprintf("Sua taxa de cliques caiu %s%%. Considere revisar os criativos.", whole(c.CTRChange)),
				Priority:    1,
			})
		}
		switch {
		case c.CPCChange < -10:
			out = append(out, models.Insight{
				ID: "cpc-down", Type: models.InsightSuccess, Icon: "fa-solid fa-coins",
				Title:       "Custo por clique reduzido",
				Description: fmt.Sprintf("Seu CPC diminuiu %s%%, ótima eficiência!", whole(c.CPCChange)),
				Priority:    2,
			})
		case c.CPCChange > 20:
			out = append(out, models.Insight{
				ID: "cpc-up", Type: models.InsightWarning, Icon: "fa-solid fa-triangle-exclamation",
				Title:       "Custo por clique em alta",
				Description: fmt.Sprintf("Seu CPC aumentou %s%%. Revise segmentação e lances.", whole(c.CPCChange)),
				Priority:    2,
			})
		}
		if c.InvestmentChange > 20 {
			out = append(out, models.Insight{
				ID: "spend-up", Type: models.InsightInfo, Icon: "fa-solid fa-chart-line",
				Title:       "Investimento aumentado",
				Description: fmt.Sprintf("O investimento cresceu %s%% neste período.", whole(c.InvestmentChange)),
				Priority:    3,
			})
		}
		if c.LeadsChange > 10 {
			out = append(out, models.Insight{
				ID: "leads-up", Type: models.InsightSuccess, Icon: "fa-solid fa-user-plus",
				Title:       "Mais leads",
				Description: fmt.Sprintf("Você recebeu %s%% mais leads que no período anterior.", whole(c.LeadsChange)),
				Priority:    3,
			})
		}
	}
	if len(out) == 0 {
		return []models.Insight{defaultInsight}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// whole renders the magnitude of a change without decimals.
func whole(v float64) string {
	return fmt.Sprintf("%.0f", math.Abs(v))
}

package metrics

import "github.com/AngelCh415/meta-dashboard-go/internal/models"

// PercentChange is the signed change from previous to current in percent.
// A zero baseline yields 100 when current grew and 0 otherwise.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

// Compare diffs two totals snapshots. Ratios are derived per snapshot first
// and then compared.
func Compare(current, previous models.AggregateBucket) models.ComparisonResult {
	curSpend, prevSpend := toFloat(current.Spend), toFloat(previous.Spend)
	return models.ComparisonResult{
		ImpressionsChange: PercentChange(float64(current.Impressions), float64(previous.Impressions)),
		ClicksChange:      PercentChange(float64(current.Clicks), float64(previous.Clicks)),
		InvestmentChange:  PercentChange(curSpend, prevSpend),
		LeadsChange:       PercentChange(float64(current.Leads), float64(previous.Leads)),
		CTRChange:         PercentChange(CTR(current.Clicks, current.Impressions), CTR(previous.Clicks, previous.Impressions)),
		CPCChange:         PercentChange(CPC(curSpend, current.Clicks), CPC(prevSpend, previous.Clicks)),
		CPLChange:         PercentChange(CPL(curSpend, current.Leads), CPL(prevSpend, previous.Leads)),
	}
}

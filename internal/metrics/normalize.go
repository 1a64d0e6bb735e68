package metrics

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/AngelCh415/meta-dashboard-go/internal/models"
)

// Normalize projects one raw Insights row into typed facts. It never fails:
// absent, unparsable or negative numbers become zero.
func Normalize(r models.RawInsightRecord) models.NormalizedFact {
	return models.NormalizedFact{
		CampaignID:   strings.TrimSpace(r.CampaignID),
		CampaignName: strings.TrimSpace(r.CampaignName),
		AdID:         strings.TrimSpace(r.AdID),
		AdName:       strings.TrimSpace(r.AdName),
		DateStart:    strings.TrimSpace(r.DateStart),
		DateStop:     strings.TrimSpace(r.DateStop),
		Age:          strings.TrimSpace(r.Age),
		Gender:       strings.ToLower(strings.TrimSpace(r.Gender)),
		Impressions:  parseCount(r.Impressions),
		Clicks:       parseCount(r.Clicks),
		Reach:        parseCount(r.Reach),
		Leads:        leadCount(r.Actions),
		Spend:        parseAmount(r.Spend),
		CostPerLead:  costPerLead(r.CostPerActionType),
	}
}

func NormalizeAll(records []models.RawInsightRecord) []models.NormalizedFact {
	out := make([]models.NormalizedFact, 0, len(records))
	for _, r := range records {
		out = append(out, Normalize(r))
	}
	return out
}

func leadCount(actions []models.Action) int64 {
	var total int64
	for _, a := range actions {
		if _, ok := LookupLeadAction(a.ActionType); ok {
			total += parseCount(a.Value)
		}
	}
	return total
}

// costPerLead takes the first allow-listed entry; cost values do not add up.
func costPerLead(costs []models.Action) decimal.Decimal {
	for _, c := range costs {
		if _, ok := LookupLeadAction(c.ActionType); ok {
			return parseAmount(c.Value)
		}
	}
	return decimal.Zero
}

func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

var maxCount = decimal.NewFromInt(math.MaxInt64)

// parseCount truncates like parseInt: "5.9" is 5. Values that do not fit in
// int64 are malformed and count as zero.
func parseCount(s string) int64 {
	d := parseAmount(s).Truncate(0)
	if d.IsZero() || d.GreaterThan(maxCount) {
		return 0
	}
	return d.IntPart()
}

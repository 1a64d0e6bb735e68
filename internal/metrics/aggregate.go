package metrics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/AngelCh415/meta-dashboard-go/internal/models"
)

// KeyFunc picks the grouping key of a fact. ok=false leaves the fact out of
// that grouping only; it still counts in Totals.
type KeyFunc func(f models.NormalizedFact) (key string, ok bool)

// ByEntity groups ad-level rows by ad and campaign-level rows by campaign.
func ByEntity(f models.NormalizedFact) (string, bool) {
	if f.AdID != "" {
		return f.AdID, true
	}
	return ByCampaign(f)
}

func ByCampaign(f models.NormalizedFact) (string, bool) {
	return f.CampaignID, f.CampaignID != ""
}

func ByDate(f models.NormalizedFact) (string, bool) {
	return f.DateStart, f.DateStart != ""
}

func ByGender(f models.NormalizedFact) (string, bool) {
	return f.Gender, f.Gender != ""
}

func ByAge(f models.NormalizedFact) (string, bool) {
	return f.Age, f.Age != ""
}

// Aggregate sums facts per key. One pass, no shared state.
func Aggregate(facts []models.NormalizedFact, keyFn KeyFunc) map[string]*models.AggregateBucket {
	out := make(map[string]*models.AggregateBucket)
	for _, f := range facts {
		k, ok := keyFn(f)
		if !ok {
			continue
		}
		b, found := out[k]
		if !found {
			b = &models.AggregateBucket{Key: k, Spend: decimal.Zero}
			out[k] = b
		}
		add(b, f)
		if b.Records == 1 {
			b.ReportedCPL = f.CostPerLead
		} else {
			b.ReportedCPL = decimal.Zero
		}
		if n := entityName(f); n != "" && (b.Name == "" || n < b.Name) {
			// lowest name wins so the label does not depend on input order
			b.Name = n
		}
		if f.CampaignID != "" && (b.CampaignID == "" || f.CampaignID < b.CampaignID) {
			b.CampaignID = f.CampaignID
		}
	}
	return out
}

// Totals sums every fact, grouped or not.
func Totals(facts []models.NormalizedFact) models.AggregateBucket {
	t := models.AggregateBucket{Spend: decimal.Zero}
	for _, f := range facts {
		add(&t, f)
	}
	return t
}

// SortedKeys returns the bucket keys in ascending order.
func SortedKeys(m map[string]*models.AggregateBucket) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func add(b *models.AggregateBucket, f models.NormalizedFact) {
	b.Records++
	b.Impressions += f.Impressions
	b.Clicks += f.Clicks
	b.Reach += f.Reach
	b.Leads += f.Leads
	b.Spend = b.Spend.Add(f.Spend)
}

func entityName(f models.NormalizedFact) string {
	if f.AdID != "" {
		return f.AdName
	}
	return f.CampaignName
}

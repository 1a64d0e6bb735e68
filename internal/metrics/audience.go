package metrics

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/AngelCh415/meta-dashboard-go/internal/models"
)

// BuildAudience splits breakdown impressions by gender and age range.
// Returns nil when no fact carries a breakdown value.
func BuildAudience(facts []models.NormalizedFact) *models.Audience {
	byGender := Aggregate(facts, ByGender)
	byAge := Aggregate(facts, ByAge)
	if len(byGender) == 0 && len(byAge) == 0 {
		return nil
	}
	return &models.Audience{
		Demographics: models.Demographics{
			Gender:    genderSplit(byGender),
			AgeRanges: ageShares(byAge),
		},
	}
}

func genderSplit(m map[string]*models.AggregateBucket) models.GenderSplit {
	var male, female, other, total int64
	for k, b := range m {
		switch k {
		case "male":
			male += b.Impressions
		case "female":
			female += b.Impressions
		default:
			other += b.Impressions
		}
		total += b.Impressions
	}
	return models.GenderSplit{
		Male:   share(male, total),
		Female: share(female, total),
		Other:  share(other, total),
	}
}

func ageShares(m map[string]*models.AggregateBucket) []models.AgeShare {
	var total int64
	keys := make([]string, 0, len(m))
	for k, b := range m {
		keys = append(keys, k)
		total += b.Impressions
	}
	sort.Slice(keys, func(i, j int) bool {
		ai, aj := ageStart(keys[i]), ageStart(keys[j])
		if ai != aj {
			return ai < aj
		}
		return keys[i] < keys[j]
	})
	out := make([]models.AgeShare, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.AgeShare{Range: k, Percentage: share(m[k].Impressions, total)})
	}
	return out
}

// ageStart reads the leading number of "18-24" or "65+". Ranges without one
// ("unknown") sort last.
func ageStart(r string) int {
	end := strings.IndexFunc(r, func(c rune) bool { return c < '0' || c > '9' })
	if end == -1 {
		end = len(r)
	}
	n, err := strconv.Atoi(r[:end])
	if err != nil {
		return math.MaxInt32
	}
	return n
}

func share(part, total int64) float64 {
	return round2(safeDivF(float64(part), float64(total)) * 100)
}

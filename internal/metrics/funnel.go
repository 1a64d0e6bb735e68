package metrics

import "github.com/AngelCh415/meta-dashboard-go/internal/models"

// BuildFunnel never shows a stage larger than the one above it. Upstream can
// report more leads than clicks; such stages are clamped down.
func BuildFunnel(t models.AggregateBucket, est Estimates) models.Funnel {
	f := models.Funnel{Impressions: t.Impressions}
	f.Clicks = min64(t.Clicks, f.Impressions)
	f.Leads = min64(t.Leads, f.Clicks)
	f.Appointments = min64(est.Appointments(f.Leads), f.Leads)
	f.Conversions = min64(est.Conversions(f.Appointments), f.Appointments)
	return f
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

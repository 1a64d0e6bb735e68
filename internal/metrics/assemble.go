package metrics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/AngelCh415/meta-dashboard-go/internal/models"
)

const trendLabel = "vs período anterior"

// Input is one already-fetched batch. Every slice is complete; the assembler
// never sees partial pages.
type Input struct {
	Campaigns []models.RawInsightRecord
	Ads       []models.RawInsightRecord
	Audience  []models.RawInsightRecord
	Previous  []models.RawInsightRecord
	// HasPrevious distinguishes "no previous period requested" from "previous
	// period fetched and empty".
	HasPrevious bool
	// Period is the requested range; when nil the record dates are used.
	Period *models.DateRange

	SkipAds      bool
	SkipInsights bool
}

// Assembler turns a batch into the dashboard envelope. It holds no state
// between calls and is safe for concurrent use.
type Assembler struct {
	Estimates Estimates
	Now       func() time.Time
}

func NewAssembler(est Estimates) *Assembler {
	return &Assembler{Estimates: est, Now: time.Now}
}

func (a *Assembler) Assemble(in Input) models.DashboardResponse {
	if len(in.Campaigns) == 0 {
		return models.Failure(models.ErrNoData, "Nenhum dado retornado da API", "")
	}
	facts := NormalizeAll(in.Campaigns)
	totals := Totals(facts)

	var cmp *models.ComparisonResult
	if in.HasPrevious {
		c := Compare(totals, Totals(NormalizeAll(in.Previous)))
		cmp = &c
	}

	adFacts := NormalizeAll(in.Ads)
	funnel := BuildFunnel(totals, a.Estimates)
	d := &models.Dashboard{
		KPIs:        a.kpis(totals, funnel, cmp),
		Performance: performance(facts),
		Ads:         []models.EntityRow{},
		Funnel:      funnel,
		Comparison:  cmp,
	}
	if !in.SkipAds {
		if len(adFacts) > 0 {
			d.Ads = entityRows(adFacts)
		} else {
			d.Ads = entityRows(facts)
		}
	}
	if !in.SkipInsights {
		d.Insights = Insights(cmp)
	}
	if len(in.Audience) > 0 {
		d.Audience = BuildAudience(NormalizeAll(in.Audience))
	} else {
		d.Audience = BuildAudience(facts)
	}

	return models.DashboardResponse{
		Success: true,
		Data:    d,
		Meta:    a.meta(in, facts, adFacts),
	}
}

// kpis reads appointments off the funnel so the card and the funnel agree
// when upstream reports more leads than clicks.
func (a *Assembler) kpis(t models.AggregateBucket, f models.Funnel, cmp *models.ComparisonResult) models.KPISet {
	spend := toFloat(t.Spend)
	ctr := CTR(t.Clicks, t.Impressions)
	cpl := CPL(spend, t.Leads)
	cpc := CPC(spend, t.Clicks)
	appts := f.Appointments
	roas := a.Estimates.ROAS(spend)

	set := models.KPISet{
		Investment:  models.KPI{Label: "Investimento", Value: spend, FormattedValue: FormatCurrency(spend)},
		Impressions: models.KPI{Label: "Impressões", Value: float64(t.Impressions), FormattedValue: FormatNumber(float64(t.Impressions))},
		Clicks: models.KPI{
			Label: "Cliques", Value: float64(t.Clicks), FormattedValue: FormatNumber(float64(t.Clicks)),
			Subtitle: "CTR " + FormatPercent(ctr),
		},
		CTR: models.KPI{Label: "CTR", Value: ctr, FormattedValue: FormatPercent(ctr)},
		Leads: models.KPI{
			Label: "Leads", Value: float64(t.Leads), FormattedValue: FormatNumber(float64(t.Leads)),
			Subtitle: "Form + WhatsApp",
		},
		CPL: models.KPI{Label: "Custo por Lead", Value: cpl, FormattedValue: FormatCurrency(cpl)},
		CPC: models.KPI{Label: "CPC", Value: cpc, FormattedValue: FormatCurrency(cpc)},
		Appointments: models.KPI{
			Label: "Agendamentos", Value: float64(appts), FormattedValue: FormatNumber(float64(appts)),
			Subtitle:  fmt.Sprintf("Taxa %d%%", roundHalfUp(safeDivF(float64(appts), float64(f.Leads))*100)),
			Estimated: true,
		},
		ROAS: models.KPI{Label: "ROAS", Value: roas, FormattedValue: fmt.Sprintf("%.1f", roas), Estimated: true},
	}
	if cmp != nil {
		set.Investment.Trend = trend(cmp.InvestmentChange, true)
		set.Impressions.Trend = trend(cmp.ImpressionsChange, true)
		set.Clicks.Trend = trend(cmp.ClicksChange, true)
		set.CTR.Trend = trend(cmp.CTRChange, true)
		set.Leads.Trend = trend(cmp.LeadsChange, true)
		set.CPL.Trend = trend(cmp.CPLChange, false)
		set.CPC.Trend = trend(cmp.CPCChange, false)
	}
	return set
}

// trend follows the sign of the rounded delta, so "0%" is always neutral.
func trend(change float64, higherIsBetter bool) *models.Trend {
	t := &models.Trend{Value: FormatDelta(change), Label: trendLabel, Favorable: true}
	switch r := math.Round(change); {
	case r > 0:
		t.Direction = models.TrendUp
		t.Favorable = higherIsBetter
	case r < 0:
		t.Direction = models.TrendDown
		t.Favorable = !higherIsBetter
	default:
		t.Direction = models.TrendNeutral
	}
	return t
}

func performance(facts []models.NormalizedFact) []models.PerformancePoint {
	byDate := Aggregate(facts, ByDate)
	out := make([]models.PerformancePoint, 0, len(byDate))
	for _, k := range SortedKeys(byDate) {
		b := byDate[k]
		spend := toFloat(b.Spend)
		out = append(out, models.PerformancePoint{
			Date:        FormatDateBR(k),
			ISODate:     k,
			Investment:  spend,
			Clicks:      b.Clicks,
			Leads:       b.Leads,
			Impressions: b.Impressions,
			CTR:         CTR(b.Clicks, b.Impressions),
			CPL:         CPL(spend, b.Leads),
		})
	}
	return out
}

// entityRows returns every entity, highest spend first. Capping is left to
// the caller.
func entityRows(facts []models.NormalizedFact) []models.EntityRow {
	buckets := Aggregate(facts, ByEntity)
	rows := make([]models.EntityRow, 0, len(buckets))
	for _, b := range buckets {
		spend := toFloat(b.Spend)
		cpl := CPL(spend, b.Leads)
		if b.Records == 1 && b.ReportedCPL.IsPositive() {
			cpl = toFloat(b.ReportedCPL)
		}
		ctr := CTR(b.Clicks, b.Impressions)
		name := b.Name
		if name == "" {
			name = "Sem nome"
		}
		rows = append(rows, models.EntityRow{
			ID:                  b.Key,
			Name:                name,
			CampaignID:          b.CampaignID,
			Investment:          spend,
			InvestmentFormatted: FormatCurrency(spend),
			Clicks:              b.Clicks,
			Impressions:         b.Impressions,
			Leads:               b.Leads,
			CPL:                 cpl,
			CPLFormatted:        FormatCurrency(cpl),
			CTR:                 ctr,
			CTRFormatted:        FormatPercent(ctr),
			CPC:                 CPC(spend, b.Clicks),
			Records:             b.Records,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Investment != rows[j].Investment {
			return rows[i].Investment > rows[j].Investment
		}
		return rows[i].ID < rows[j].ID
	})
	return rows
}

func (a *Assembler) meta(in Input, facts, adFacts []models.NormalizedFact) *models.ResponseMeta {
	m := &models.ResponseMeta{
		TotalCampaigns: len(Aggregate(facts, ByCampaign)),
		TotalAds:       len(Aggregate(adFacts, func(f models.NormalizedFact) (string, bool) { return f.AdID, f.AdID != "" })),
		TotalRecords:   len(in.Campaigns),
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	m.GeneratedAt = now().UTC().Format(time.RFC3339)
	if in.Period != nil && in.Period.Since != "" {
		m.PeriodStart, m.PeriodEnd = in.Period.Since, in.Period.Until
		return m
	}
	for _, f := range facts {
		if f.DateStart != "" && (m.PeriodStart == "" || f.DateStart < m.PeriodStart) {
			m.PeriodStart = f.DateStart
		}
		stop := f.DateStop
		if stop == "" {
			stop = f.DateStart
		}
		if stop > m.PeriodEnd {
			m.PeriodEnd = stop
		}
	}
	return m
}

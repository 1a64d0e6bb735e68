package metrics

import (
	"math"

	"github.com/shopspring/decimal"
)

// Estimates holds placeholder business ratios. None of them is measured:
// the Insights API exposes no appointment, sale or revenue signal for these
// accounts, so the dashboard fills those stages from fixed ratios until a
// real source exists.
type Estimates struct {
	AppointmentRate float64 `yaml:"appointment_rate"`
	ConversionRate  float64 `yaml:"conversion_rate"`
	PlaceholderROAS float64 `yaml:"placeholder_roas"`
}

var DefaultEstimates = Estimates{
	AppointmentRate: 0.4,
	ConversionRate:  0.3,
	PlaceholderROAS: 4.2,
}

// CTR is clicks per impression in percent. It can exceed 100 when upstream
// reports more clicks than impressions.
func CTR(clicks, impressions int64) float64 {
	return safeDivF(float64(clicks), float64(impressions)) * 100
}

func CPL(spend float64, leads int64) float64 {
	return safeDivF(spend, float64(leads))
}

func CPC(spend float64, clicks int64) float64 {
	return safeDivF(spend, float64(clicks))
}

// Appointments is an estimate, see Estimates.
func (e Estimates) Appointments(leads int64) int64 {
	return roundHalfUp(float64(leads) * e.AppointmentRate)
}

// Conversions is an estimate, see Estimates.
func (e Estimates) Conversions(appointments int64) int64 {
	return roundHalfUp(float64(appointments) * e.ConversionRate)
}

// ROAS is a constant placeholder whenever there was spend.
func (e Estimates) ROAS(spend float64) float64 {
	if spend > 0 {
		return e.PlaceholderROAS
	}
	return 0
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func safeDivF(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func roundHalfUp(f float64) int64 {
	return int64(math.Floor(f + 0.5))
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

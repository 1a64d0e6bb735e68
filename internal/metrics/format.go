package metrics

import (
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const isoDate = "2006-01-02"

// message.Printer is not safe for concurrent use, so each call gets its own.
func brPrinter() *message.Printer {
	return message.NewPrinter(language.BrazilianPortuguese)
}

// FormatCurrency renders Brazilian Real: "R$ 1.234,56" (non-breaking space).
func FormatCurrency(v float64) string {
	return "R$\u00a0" + brPrinter().Sprintf("%.2f", v)
}

// FormatNumber rounds and groups thousands with dots.
func FormatNumber(v float64) string {
	return brPrinter().Sprintf("%d", int64(math.Round(v)))
}

// FormatPercent renders one decimal with a comma: "5,0%".
func FormatPercent(v float64) string {
	return brPrinter().Sprintf("%.1f", v) + "%"
}

// FormatDelta renders a whole-number signed change: "+12%", "-8%", "0%".
func FormatDelta(v float64) string {
	r := int64(math.Round(v))
	s := brPrinter().Sprintf("%d", r) + "%"
	if r > 0 {
		return "+" + s
	}
	return s
}

// FormatDateBR turns "2024-06-01" into "01/06". Unparsable input is returned as is.
func FormatDateBR(iso string) string {
	t, err := time.Parse(isoDate, iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01")
}

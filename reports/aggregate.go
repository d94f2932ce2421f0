// Package reports holds the derived-metric computations: time totals,
// billable splits, budget progress and the workload matrix. Everything
// here is recomputed from freshly fetched rows on each request; nothing
// is cached or incrementally maintained.
package reports

import (
	"github.com/shopspring/decimal"

	"tastytracker/models"
)

func TotalMinutes(entries []models.TimeEntry) int {
	total := 0
	for _, e := range entries {
		total += e.DurationMinutes
	}
	return total
}

func BillableMinutes(entries []models.TimeEntry) int {
	total := 0
	for _, e := range entries {
		if e.IsBillable {
			total += e.DurationMinutes
		}
	}
	return total
}

// Hours converts minutes to fractional hours.
func Hours(minutes int) float64 {
	return float64(minutes) / 60
}

// BillablePercent is billable/total as a percentage, 0 when there is
// nothing logged.
func BillablePercent(billableMinutes, totalMinutes int) float64 {
	if totalMinutes == 0 {
		return 0
	}
	return float64(billableMinutes) / float64(totalMinutes) * 100
}

type Progress struct {
	Percent    float64 `json:"percent"`
	OverBudget bool    `json:"over_budget"`
}

// ProjectProgress relates logged hours to the budget. A missing budget
// yields zero progress rather than a division by zero.
func ProjectProgress(hoursLogged, budgetHours float64) Progress {
	if budgetHours <= 0 {
		return Progress{}
	}
	percent := hoursLogged / budgetHours * 100
	return Progress{
		Percent:    percent,
		OverBudget: percent > 100,
	}
}

// BillableAmount prices billable minutes at an hourly rate.
func BillableAmount(billableMinutes int, hourlyRate decimal.Decimal) decimal.Decimal {
	hours := decimal.NewFromInt(int64(billableMinutes)).Div(decimal.NewFromInt(60))
	return hours.Mul(hourlyRate).Round(2)
}

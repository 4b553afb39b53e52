package kpi

import (
	"fmt"
	"time"

	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

func compare(label string, current, previous []domain.DailyRecord, roomHint *int) domain.PeriodComparison {
	cur := Aggregate(current, roomHint)
	prev := Aggregate(previous, roomHint)
	return domain.PeriodComparison{
		Label:    label,
		Current:  cur,
		Previous: prev,
		Delta:    Delta(cur, prev),
	}
}

// Yearly compares a calendar year with the year before
func Yearly(records []domain.DailyRecord, year int, roomHint *int) domain.PeriodComparison {
	return compare(fmt.Sprint(year), domain.InYear(records, year), domain.InYear(records, year-1), roomHint)
}

// Monthly compares a month with the same month one year earlier
func Monthly(records []domain.DailyRecord, year, month int, roomHint *int) domain.PeriodComparison {
	return compare(
		fmt.Sprintf("%s %d", MonthName(month), year),
		inMonth(records, year, month),
		inMonth(records, year-1, month),
		roomHint,
	)
}

// YearToDate compares January 1st through end with the same span one year earlier. A zero
// end uses the last date of year present in records.
func YearToDate(records []domain.DailyRecord, year int, end time.Time, roomHint *int) domain.PeriodComparison {
	if end.IsZero() {
		for _, r := range domain.InYear(records, year) {
			if r.Date.After(end) {
				end = r.Date
			}
		}
	}
	end = domain.Day(end)
	prevEnd := sameDayYearBefore(end)

	var current, previous []domain.DailyRecord
	for _, r := range records {
		switch {
		case r.Date.Year() == year && !r.Date.After(end):
			current = append(current, r)
		case r.Date.Year() == year-1 && !r.Date.After(prevEnd):
			previous = append(previous, r)
		}
	}

	label := fmt.Sprintf("YTD %d", year)
	if !end.IsZero() {
		label = "YTD " + end.Format(domain.DateLayout)
	}
	return compare(label, current, previous, roomHint)
}

// sameDayYearBefore moves t back one year, clamping 29 February to the 28th
func sameDayYearBefore(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	if m == time.February && d == 29 {
		d = 28
	}
	return time.Date(y-1, m, d, 0, 0, 0, 0, time.UTC)
}

func inMonth(records []domain.DailyRecord, year, month int) []domain.DailyRecord {
	var out []domain.DailyRecord
	for _, r := range records {
		if r.Date.Year() == year && int(r.Date.Month()) == month {
			out = append(out, r)
		}
	}
	return out
}

package core

import "sort"

// DailyTotal is the amount spent on one calendar date.
type DailyTotal struct {
	Date  Date  `json:"date"`
	Total Money `json:"total"`
}

// Summarize groups a snapshot by date and sums amounts per group, in
// integer cents. Groups are returned in date-ascending order; an empty
// snapshot yields an empty slice.
func Summarize(expenses []Expense) []DailyTotal {
	totals := make(map[string]int64, len(expenses))
	dates := make(map[string]Date, len(expenses))
	for _, e := range expenses {
		key := e.Date.String()
		totals[key] += e.Amount.Cents
		dates[key] = e.Date
	}

	out := make([]DailyTotal, 0, len(totals))
	for key, cents := range totals {
		out = append(out, DailyTotal{Date: dates[key], Total: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

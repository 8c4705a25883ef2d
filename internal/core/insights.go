package core

// Insights are the aggregate statistics computed over a full expense
// snapshot. All values derive from one pass over the input; the struct
// holds no reference back into it.
type Insights struct {
	AverageSpending    Money    `json:"average_spending"`
	HighestExpense     Money    `json:"highest_expense"`
	MostCommonCategory Category `json:"most_common_category"`
	CategoryCount      int      `json:"category_count"`
}

// ComputeInsights computes the mean amount, the maximum amount and the
// most common category of a snapshot. The mean is computed in integer
// cents with half-up rounding. When two categories tie on occurrence
// count, the one encountered first in input order wins; the policy is
// arbitrary but fixed so results never depend on map iteration order.
//
// An empty snapshot returns ErrEmptyDataset: the average of zero
// expenses is undefined and must not be reported as zero.
func ComputeInsights(expenses []Expense) (Insights, error) {
	if len(expenses) == 0 {
		return Insights{}, ErrEmptyDataset
	}

	var (
		totalCents int64
		highest    int64
		counts     = make(map[Category]int, len(Categories))
		firstSeen  = make(map[Category]int, len(Categories))
	)
	for i, e := range expenses {
		totalCents += e.Amount.Cents
		if e.Amount.Cents > highest {
			highest = e.Amount.Cents
		}
		if _, ok := firstSeen[e.Category]; !ok {
			firstSeen[e.Category] = i
		}
		counts[e.Category]++
	}

	var (
		mode      Category
		modeCount int
	)
	for category, count := range counts {
		switch {
		case count > modeCount:
			mode, modeCount = category, count
		case count == modeCount && firstSeen[category] < firstSeen[mode]:
			mode = category
		}
	}

	n := int64(len(expenses))
	return Insights{
		AverageSpending:    Money{Cents: roundedMean(totalCents, n)},
		HighestExpense:     Money{Cents: highest},
		MostCommonCategory: mode,
		CategoryCount:      modeCount,
	}, nil
}

// roundedMean divides total by n with half-up rounding, in integers.
func roundedMean(total, n int64) int64 {
	return (2*total + n) / (2 * n)
}

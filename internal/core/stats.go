package core

// ActivityTotal is the summed duration of all sessions with one activity.
type ActivityTotal struct {
	Activity string `json:"activity"`
	Minutes  int    `json:"minutes"`
	Sessions int    `json:"sessions"`
}

// ActivityTotals groups trainings by activity label and sums durations.
// Groups appear in the order their activity is first seen.
func ActivityTotals(trainings []Training) []ActivityTotal {
	index := make(map[string]int)
	var totals []ActivityTotal
	for _, t := range trainings {
		i, ok := index[t.Activity]
		if !ok {
			i = len(totals)
			index[t.Activity] = i
			totals = append(totals, ActivityTotal{Activity: t.Activity})
		}
		totals[i].Minutes += t.Duration
		totals[i].Sessions++
	}
	return totals
}

// BarWidths returns each total as a percentage (0-100) of the largest one,
// for rendering a horizontal bar chart.
func BarWidths(totals []ActivityTotal) []int {
	maxMinutes := 0
	for _, t := range totals {
		maxMinutes = max(maxMinutes, t.Minutes)
	}
	widths := make([]int, len(totals))
	if maxMinutes <= 0 {
		return widths
	}
	for i, t := range totals {
		widths[i] = max(0, t.Minutes*100/maxMinutes)
	}
	return widths
}

package streak

import "github.com/julianstephens/habitual/internal/utils"

// dailyStreak treats days exactly one calendar day apart as consecutive.
// The habit's schedule is not consulted: for specific_days habits a gap between
// two scheduled days still breaks the run.
func dailyStreak(in input) Result {
	completed := in.totals.completedDays(targetCount(in.habit))
	if len(completed) == 0 {
		return Result{}
	}

	set := toSet(completed)
	anchor := in.today
	if !set[anchor] {
		anchor = utils.AddDays(in.today, -1)
	}

	return Result{
		CurrentStreak:      runEndingAt(set, anchor, 1),
		BestStreak:         longestRun(completed, 1),
		LastCompletionDate: utils.FormatDay(completed[len(completed)-1]),
	}
}

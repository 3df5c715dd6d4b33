package streak

import (
	"time"

	"github.com/julianstephens/habitual/internal/utils"
)

// weeklyStreak counts runs of consecutive weeks that met the weekly quota.
func weeklyStreak(in input) Result {
	completed := in.totals.completedDays(targetCount(in.habit))
	if len(completed) == 0 {
		return Result{}
	}

	// completed is ascending, so each bucket is ascending too.
	buckets := make(map[time.Time][]time.Time)
	for _, day := range completed {
		ws := WeekStartOf(day, in.opts.WeekStart)
		buckets[ws] = append(buckets[ws], day)
	}

	quota := weeklyQuota(in.habit)
	var weeks []time.Time
	for ws, days := range buckets {
		if len(days) >= quota {
			weeks = append(weeks, ws)
		}
	}
	if len(weeks) == 0 {
		return Result{}
	}
	sortDays(weeks)

	set := toSet(weeks)
	anchor := WeekStartOf(in.today, in.opts.WeekStart)
	if !set[anchor] {
		anchor = utils.AddDays(anchor, -7)
	}

	latest := buckets[weeks[len(weeks)-1]]
	return Result{
		CurrentStreak:      runEndingAt(set, anchor, 7),
		BestStreak:         longestRun(weeks, 7),
		LastCompletionDate: utils.FormatDay(latest[len(latest)-1]),
	}
}

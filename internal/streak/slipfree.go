package streak

import (
	"time"

	"github.com/julianstephens/habitual/internal/utils"
)

// slipFreeStreak counts clean days, where any record on a day is a slip. Days
// before the habit's creation day are never clean.
func slipFreeStreak(in input) Result {
	current := 0
	if _, slipped := in.totals[in.today]; !slipped {
		current = 1
		for d := utils.AddDays(in.today, -1); !d.Before(in.created); d = utils.AddDays(d, -1) {
			if _, slipped := in.totals[d]; slipped {
				break
			}
			current++
		}
	}

	var slips []time.Time
	for _, d := range in.totals.recordedDays() {
		if !d.After(in.today) {
			slips = append(slips, d)
		}
	}

	// Gaps are counted in clean days. A virtual slip the day before creation makes
	// the first gap start at the creation day, and the trailing gap runs through today.
	best := current
	prev := utils.AddDays(in.created, -1)
	for _, slip := range slips {
		if gap := utils.DaysBetween(prev, slip) - 1; gap > best {
			best = gap
		}
		prev = slip
	}
	if gap := utils.DaysBetween(prev, in.today); gap > best {
		best = gap
	}

	res := Result{CurrentStreak: current, BestStreak: best}
	if len(slips) > 0 {
		res.LastCompletionDate = utils.FormatDay(slips[len(slips)-1])
	}
	return res
}

package streak

import (
	"sort"
	"time"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// dayTotals maps a calendar day (midnight UTC) to the summed completion count recorded on it.
type dayTotals map[time.Time]int

// totalsFor sums the completions belonging to habitID per calendar day.
// Records with malformed day keys or dated before created are ignored.
func totalsFor(habitID string, completions []models.HabitCompletion, created time.Time) dayTotals {
	totals := make(dayTotals)
	for _, c := range completions {
		if c.HabitID != habitID {
			continue
		}
		day, err := utils.ParseDay(c.CompletionDate)
		if err != nil || day.Before(created) {
			continue
		}
		totals[day] += c.Count
	}
	return totals
}

// createdDay is the habit's creation day in the calendar of loc.
func createdDay(h models.Habit, loc *time.Location) time.Time {
	return utils.DayOf(h.CreatedAt.In(loc))
}

// recordedDays returns every day that has at least one record, ascending.
func (t dayTotals) recordedDays() []time.Time {
	days := make([]time.Time, 0, len(t))
	for day := range t {
		days = append(days, day)
	}
	sortDays(days)
	return days
}

// completedDays returns the days whose summed count meets target, ascending.
func (t dayTotals) completedDays(target int) []time.Time {
	var days []time.Time
	for day, count := range t {
		if count >= target {
			days = append(days, day)
		}
	}
	sortDays(days)
	return days
}

// CompletedDays returns the day keys on which the habit met its target, ascending.
// Days before the habit's creation day in loc are skipped.
func CompletedDays(h models.Habit, completions []models.HabitCompletion, loc *time.Location) []string {
	days := totalsFor(h.ID, completions, createdDay(h, loc)).completedDays(targetCount(h))
	keys := make([]string, len(days))
	for i, d := range days {
		keys[i] = utils.FormatDay(d)
	}
	return keys
}

// WeekStartOf returns the first day of the week containing day.
func WeekStartOf(day time.Time, weekStart time.Weekday) time.Time {
	d := utils.DayOf(day)
	offset := (int(d.Weekday()) - int(weekStart) + 7) % 7
	return utils.AddDays(d, -offset)
}

// longestRun returns the longest run of days that are exactly step days apart.
// days must be sorted ascending.
func longestRun(days []time.Time, step int) int {
	if len(days) == 0 {
		return 0
	}
	best, run := 1, 1
	for i := 1; i < len(days); i++ {
		if utils.DaysBetween(days[i-1], days[i]) == step {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// runEndingAt counts consecutive members of set going backward from anchor in steps of step days.
func runEndingAt(set map[time.Time]bool, anchor time.Time, step int) int {
	n := 0
	for d := anchor; set[d]; d = utils.AddDays(d, -step) {
		n++
	}
	return n
}

func toSet(days []time.Time) map[time.Time]bool {
	set := make(map[time.Time]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	return set
}

func sortDays(days []time.Time) {
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
}

func targetCount(h models.Habit) int {
	if h.TargetCount < 1 {
		return 1
	}
	return h.TargetCount
}

func weeklyQuota(h models.Habit) int {
	if h.FrequencyValue < 1 {
		return 1
	}
	return h.FrequencyValue
}

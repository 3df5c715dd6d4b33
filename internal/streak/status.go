package streak

import (
	"time"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// Status is a habit's progress for one day.
//
// For weekly habits Count and Target describe the week (days that met the
// target versus the weekly quota) while IsComplete describes the day itself.
type Status struct {
	Count      int
	Target     int
	IsComplete bool
}

// GetCompletionStatus returns the progress of h on the calendar day of date.
// Records dated before the habit's creation day do not count.
func GetCompletionStatus(h models.Habit, completions []models.HabitCompletion, date time.Time, opts Options) Status {
	totals := totalsFor(h.ID, completions, createdDay(h, opts.location(date.Location())))
	day := utils.DayOf(date)
	target := targetCount(h)

	if h.FrequencyType == models.FrequencyWeekly {
		ws := WeekStartOf(day, opts.WeekStart)
		met := 0
		for i := 0; i < 7; i++ {
			if totals[utils.AddDays(ws, i)] >= target {
				met++
			}
		}
		return Status{
			Count:      met,
			Target:     weeklyQuota(h),
			IsComplete: totals[day] >= target,
		}
	}

	count := totals[day]
	return Status{
		Count:      count,
		Target:     target,
		IsComplete: count >= target,
	}
}

// StatusFor looks up habitID in habits and returns its status for date.
// ok is false when no habit has that id.
func StatusFor(habits []models.Habit, habitID string, completions []models.HabitCompletion, date time.Time, opts Options) (Status, bool) {
	h, ok := findHabit(habits, habitID)
	if !ok {
		return Status{}, false
	}
	return GetCompletionStatus(h, completions, date, opts), true
}

// IsScheduled reports whether h is due on the calendar day of date.
// Only specific_days habits have days off.
func IsScheduled(h models.Habit, date time.Time) bool {
	if h.FrequencyType != models.FrequencySpecificDays {
		return true
	}
	n := models.WeekdayNumber(date.Weekday())
	for _, d := range h.SpecificDays {
		if d == n {
			return true
		}
	}
	return false
}

// Package streak computes habit completion status and streaks.
//
// Everything in this package is a pure function of its arguments: callers pass
// the habit, the completion records they have already fetched, and the current
// date. Nothing is read from or written to storage here.
package streak

import (
	"time"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// Result is the streak summary for one habit as of a given day.
type Result struct {
	CurrentStreak      int
	BestStreak         int
	LastCompletionDate string // YYYY-MM-DD, empty when there is none
}

// Options carries the user preferences the engine depends on.
type Options struct {
	WeekStart time.Weekday
	// Location is the user's timezone, used to place the habit's creation day.
	// When nil the location of the date being evaluated is used.
	Location *time.Location
}

func (o Options) location(fallback *time.Location) *time.Location {
	if o.Location != nil {
		return o.Location
	}
	return fallback
}

// DefaultOptions starts weeks on Monday.
func DefaultOptions() Options {
	return Options{WeekStart: time.Monday}
}

// OptionsFromSettings derives engine options from the persisted settings.
func OptionsFromSettings(s models.Settings) Options {
	return Options{WeekStart: s.WeekStartDay()}
}

// Strategy selects which streak algorithm applies to a habit.
type Strategy int

const (
	// StrategyDaily counts consecutive calendar days that met the target.
	// It serves daily and specific_days habits.
	StrategyDaily Strategy = iota
	// StrategyWeekly counts consecutive weeks that met the weekly quota.
	StrategyWeekly
	// StrategySlipFree counts consecutive days without a recorded slip.
	// It serves avoid habits in auto-complete mode.
	StrategySlipFree
)

func (s Strategy) String() string {
	switch s {
	case StrategyWeekly:
		return "weekly"
	case StrategySlipFree:
		return "slip-free"
	default:
		return "daily"
	}
}

// StrategyFor returns the streak algorithm for a habit's shape.
func StrategyFor(h models.Habit) Strategy {
	switch {
	case h.IsSlipTracking():
		return StrategySlipFree
	case h.FrequencyType == models.FrequencyWeekly:
		return StrategyWeekly
	default:
		return StrategyDaily
	}
}

// input is the normalized view of a habit's history handed to a calculator.
type input struct {
	habit   models.Habit
	totals  dayTotals
	today   time.Time // midnight UTC of the user's current calendar day
	created time.Time // midnight UTC of the habit's creation day in the user's calendar
	opts    Options
}

// ComputeStreak returns the current and best streak of h as of today.
//
// today is the real current time in the user's timezone; its calendar date is the
// anchor for the current streak. completions may contain records of other habits;
// they are ignored, as are records dated before the habit's creation day.
func ComputeStreak(h models.Habit, completions []models.HabitCompletion, today time.Time, opts Options) Result {
	created := createdDay(h, opts.location(today.Location()))
	in := input{
		habit:   h,
		totals:  totalsFor(h.ID, completions, created),
		today:   utils.DayOf(today),
		created: created,
		opts:    opts,
	}

	switch StrategyFor(h) {
	case StrategySlipFree:
		return slipFreeStreak(in)
	case StrategyWeekly:
		return weeklyStreak(in)
	default:
		return dailyStreak(in)
	}
}

// StreakFor looks up habitID in habits and computes its streak.
// ok is false when no habit has that id.
func StreakFor(habits []models.Habit, habitID string, completions []models.HabitCompletion, today time.Time, opts Options) (Result, bool) {
	h, ok := findHabit(habits, habitID)
	if !ok {
		return Result{}, false
	}
	return ComputeStreak(h, completions, today, opts), true
}

// ToModel converts a result into the cached streak row for habitID.
func (r Result) ToModel(habitID string, updatedAt time.Time) models.HabitStreak {
	return models.HabitStreak{
		HabitID:            habitID,
		CurrentStreak:      r.CurrentStreak,
		BestStreak:         r.BestStreak,
		LastCompletionDate: r.LastCompletionDate,
		UpdatedAt:          updatedAt,
	}
}

func findHabit(habits []models.Habit, habitID string) (models.Habit, bool) {
	for _, h := range habits {
		if h.ID == habitID {
			return h, true
		}
	}
	return models.Habit{}, false
}

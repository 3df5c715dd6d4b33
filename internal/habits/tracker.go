// Package habits is the service layer between the CLI/TUI and storage.
//
// A Tracker fetches habits and completions, hands them to the pure streak
// engine, and persists the results. Every mutation recomputes and caches the
// habit's streak from the post-mutation completion set.
package habits

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/streak"
	"github.com/julianstephens/habitual/internal/utils"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrHabitArchived = errors.New("habit is archived")
	ErrDuplicateName = errors.New("a habit with that name already exists")
	ErrInvalidDay    = errors.New("invalid day")
	ErrInvalidCount  = errors.New("count must be at least 1")
	ErrNothingToUndo = errors.New("nothing recorded for that day")
)

var validate = validator.New()

// Store is the subset of storage.Provider the tracker needs.
type Store interface {
	GetSettings() (models.Settings, error)

	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error)
	UpdateHabit(models.Habit) error

	AddHabitCompletion(models.HabitCompletion) error
	GetHabitCompletions(habitID string) ([]models.HabitCompletion, error)
	GetHabitCompletionsForDay(habitID, day string) ([]models.HabitCompletion, error)
	GetCompletionsInRange(startDay, endDay string) ([]models.HabitCompletion, error)
	GetAllHabitCompletions() ([]models.HabitCompletion, error)
	DeleteHabitCompletion(id string) error
	ReplaceHabitCompletions(habitID string, completions []models.HabitCompletion) error

	UpsertHabitStreak(models.HabitStreak) error
	GetAllHabitStreaks() ([]models.HabitStreak, error)
}

// Tracker records habit progress and keeps cached streaks current.
// Mutations are serialized; queries only read.
type Tracker struct {
	store Store
	now   func() time.Time
	mu    sync.Mutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now as the source of the current instant.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// New creates a tracker backed by store.
func New(store Store, opts ...Option) *Tracker {
	t := &Tracker{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Change is the state of a habit right after a mutation.
type Change struct {
	Habit  models.Habit
	Day    string
	Status streak.Status
	Streak streak.Result
}

// clock pins the user's calendar for the duration of one operation.
type clock struct {
	loc         *time.Location
	now         time.Time // current instant in loc
	today       time.Time // calendar day of now
	opts        streak.Options
	heatmapDays int
}

func (t *Tracker) clock() (clock, error) {
	settings, err := t.store.GetSettings()
	if err != nil {
		return clock{}, fmt.Errorf("failed to load settings: %w", err)
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return clock{}, fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
	}
	now := t.now().In(loc)
	opts := streak.OptionsFromSettings(settings)
	opts.Location = loc
	return clock{
		loc:         loc,
		now:         now,
		today:       utils.DayOf(now),
		opts:        opts,
		heatmapDays: settings.HeatmapDays,
	}, nil
}

func (c clock) createdDay(h models.Habit) time.Time {
	return utils.DayOf(h.CreatedAt.In(c.loc))
}

// parseDay parses a day key; an empty key means today.
func (c clock) parseDay(day string) (time.Time, error) {
	if day == "" {
		return c.today, nil
	}
	d, err := utils.ParseDay(day)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDay, err)
	}
	return d, nil
}

// trackedDay parses a day key and checks it lies between the habit's creation day and today.
func (c clock) trackedDay(h models.Habit, day string) (time.Time, error) {
	d, err := c.parseDay(day)
	if err != nil {
		return time.Time{}, err
	}
	if d.After(c.today) {
		return time.Time{}, fmt.Errorf("%w: %s is in the future", ErrInvalidDay, utils.FormatDay(d))
	}
	if d.Before(c.createdDay(h)) {
		return time.Time{}, fmt.Errorf("%w: %s is before %q was created", ErrInvalidDay, utils.FormatDay(d), h.Name)
	}
	return d, nil
}

func (t *Tracker) habit(id string) (models.Habit, error) {
	h, err := t.store.GetHabit(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Habit{}, fmt.Errorf("%w: %s", ErrHabitNotFound, id)
		}
		return models.Habit{}, err
	}
	return h, nil
}

// activeHabit is habit but also rejects archived habits.
func (t *Tracker) activeHabit(id string) (models.Habit, error) {
	h, err := t.habit(id)
	if err != nil {
		return models.Habit{}, err
	}
	if h.ArchivedAt != nil {
		return models.Habit{}, fmt.Errorf("%w: %s", ErrHabitArchived, h.Name)
	}
	return h, nil
}

// Recompute computes the streak of h from completions and caches it.
// A failed cache write is logged; the computed result is returned regardless.
func (t *Tracker) Recompute(h models.Habit, completions []models.HabitCompletion) (streak.Result, error) {
	c, err := t.clock()
	if err != nil {
		return streak.Result{}, err
	}
	return t.recompute(c, h, completions), nil
}

// RefreshStreak reloads a habit's completions and rewrites its cached streak.
// Used when a habit comes back from the archive or the trash.
func (t *Tracker) RefreshStreak(habitID string) (streak.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, err := t.habit(habitID)
	if err != nil {
		return streak.Result{}, err
	}
	completions, err := t.store.GetHabitCompletions(h.ID)
	if err != nil {
		return streak.Result{}, fmt.Errorf("failed to load completions: %w", err)
	}
	return t.Recompute(h, completions)
}

func (t *Tracker) recompute(c clock, h models.Habit, completions []models.HabitCompletion) streak.Result {
	result := streak.ComputeStreak(h, completions, c.now, c.opts)
	if err := t.store.UpsertHabitStreak(result.ToModel(h.ID, c.now.UTC())); err != nil {
		logger.Warn("Failed to update cached streak", "habit", h.Name, "error", err)
	}
	return result
}

func (t *Tracker) changed(c clock, h models.Habit, day time.Time, completions []models.HabitCompletion) Change {
	return Change{
		Habit:  h,
		Day:    utils.FormatDay(day),
		Status: streak.GetCompletionStatus(h, completions, day, c.opts),
		Streak: t.recompute(c, h, completions),
	}
}

// resync re-reads a habit's completions after a partially applied mutation
// so the cached streak matches what actually landed in storage.
func (t *Tracker) resync(c clock, h models.Habit) {
	completions, err := t.store.GetHabitCompletions(h.ID)
	if err != nil {
		logger.Warn("Failed to reload completions", "habit", h.Name, "error", err)
		return
	}
	t.recompute(c, h, completions)
}

func targetOf(h models.Habit) int {
	if h.TargetCount < 1 {
		return 1
	}
	return h.TargetCount
}

func onDay(completions []models.HabitCompletion, key string) []models.HabitCompletion {
	var out []models.HabitCompletion
	for _, r := range completions {
		if r.CompletionDate == key {
			out = append(out, r)
		}
	}
	return out
}

func without(completions []models.HabitCompletion, ids ...string) []models.HabitCompletion {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	out := make([]models.HabitCompletion, 0, len(completions))
	for _, r := range completions {
		if !drop[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

func clampHeatmapDays(days int) int {
	if days > constants.MaxHeatmapDays {
		return constants.MaxHeatmapDays
	}
	return days
}

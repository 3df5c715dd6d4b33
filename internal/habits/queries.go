package habits

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/streak"
	"github.com/julianstephens/habitual/internal/utils"
)

// Streak computes a habit's streak from its stored completions.
// The cached streak row is neither read nor written.
func (t *Tracker) Streak(habitID string) (streak.Result, error) {
	c, err := t.clock()
	if err != nil {
		return streak.Result{}, err
	}
	h, err := t.habit(habitID)
	if err != nil {
		return streak.Result{}, err
	}
	completions, err := t.store.GetHabitCompletions(h.ID)
	if err != nil {
		return streak.Result{}, fmt.Errorf("failed to load completions: %w", err)
	}
	return streak.ComputeStreak(h, completions, c.now, c.opts), nil
}

// Status returns a habit's progress on day (YYYY-MM-DD, empty for today).
func (t *Tracker) Status(habitID, day string) (streak.Status, error) {
	c, err := t.clock()
	if err != nil {
		return streak.Status{}, err
	}
	h, err := t.habit(habitID)
	if err != nil {
		return streak.Status{}, err
	}
	d, err := c.parseDay(day)
	if err != nil {
		return streak.Status{}, err
	}
	completions, err := t.store.GetHabitCompletions(h.ID)
	if err != nil {
		return streak.Status{}, fmt.Errorf("failed to load completions: %w", err)
	}
	return streak.GetCompletionStatus(h, completions, d, c.opts), nil
}

// TodayRow summarizes one active habit for the current day.
type TodayRow struct {
	Habit     models.Habit
	Scheduled bool
	Status    streak.Status
	Streak    streak.Result
}

// Agenda is the list of active habits for one day.
type Agenda struct {
	Day  string
	Rows []TodayRow
}

// Done counts the scheduled rows whose day is complete.
func (a Agenda) Done() (done, scheduled int) {
	for _, r := range a.Rows {
		if !r.Scheduled {
			continue
		}
		scheduled++
		if r.Status.IsComplete != r.Habit.IsSlipTracking() {
			done++
		}
	}
	return done, scheduled
}

// Today lists every active habit with today's status and its streak.
func (t *Tracker) Today() (Agenda, error) {
	c, err := t.clock()
	if err != nil {
		return Agenda{}, err
	}
	habits, err := t.store.GetAllHabits(false, false)
	if err != nil {
		return Agenda{}, fmt.Errorf("failed to load habits: %w", err)
	}
	byHabit, err := t.completionsByHabit()
	if err != nil {
		return Agenda{}, err
	}

	agenda := Agenda{Day: utils.FormatDay(c.today)}
	for _, h := range habits {
		if !h.IsActive() {
			continue
		}
		completions := byHabit[h.ID]
		agenda.Rows = append(agenda.Rows, TodayRow{
			Habit:     h,
			Scheduled: streak.IsScheduled(h, c.today),
			Status:    streak.GetCompletionStatus(h, completions, c.today, c.opts),
			Streak:    streak.ComputeStreak(h, completions, c.now, c.opts),
		})
	}
	return agenda, nil
}

func (t *Tracker) completionsByHabit() (map[string][]models.HabitCompletion, error) {
	all, err := t.store.GetAllHabitCompletions()
	if err != nil {
		return nil, fmt.Errorf("failed to load completions: %w", err)
	}
	byHabit := make(map[string][]models.HabitCompletion)
	for _, r := range all {
		byHabit[r.HabitID] = append(byHabit[r.HabitID], r)
	}
	return byHabit, nil
}

// HeatmapCell is one day of a heatmap.
type HeatmapCell struct {
	Day      string
	Count    int  // summed records; slips for auto-complete habits
	Complete bool // the day counts toward the streak
	Tracked  bool // the day is on or after the habit's creation day
}

// Heatmap is a trailing window of days ending today, oldest first.
type Heatmap struct {
	Habit models.Habit
	Cells []HeatmapCell
}

// Heatmap returns per-day progress for the last days days. A non-positive
// days uses the heatmap_days setting.
func (t *Tracker) Heatmap(habitID string, days int) (Heatmap, error) {
	c, err := t.clock()
	if err != nil {
		return Heatmap{}, err
	}
	h, err := t.habit(habitID)
	if err != nil {
		return Heatmap{}, err
	}

	if days <= 0 {
		days = c.heatmapDays
	}
	days = clampHeatmapDays(days)

	created := c.createdDay(h)
	from := utils.AddDays(c.today, -(days - 1))
	if from.Before(created) {
		from = created
	}

	totals := make(map[string]int)
	if !from.After(c.today) {
		completions, err := t.store.GetCompletionsInRange(utils.FormatDay(from), utils.FormatDay(c.today))
		if err != nil {
			return Heatmap{}, fmt.Errorf("failed to load completions: %w", err)
		}
		for _, r := range completions {
			if r.HabitID == h.ID {
				totals[r.CompletionDate] += r.Count
			}
		}
	}
	target := targetOf(h)
	slips := h.IsSlipTracking()

	hm := Heatmap{Habit: h, Cells: make([]HeatmapCell, 0, days)}
	for i := days - 1; i >= 0; i-- {
		d := utils.AddDays(c.today, -i)
		key := utils.FormatDay(d)
		cell := HeatmapCell{
			Day:     key,
			Count:   totals[key],
			Tracked: !d.Before(created),
		}
		if slips {
			cell.Complete = cell.Tracked && cell.Count == 0
		} else {
			cell.Complete = cell.Count >= target
		}
		hm.Cells = append(hm.Cells, cell)
	}
	return hm, nil
}

// Drift is a cached streak that no longer matches its recomputed value.
type Drift struct {
	Habit    models.Habit
	Cached   *models.HabitStreak // nil when no row is cached
	Computed streak.Result
}

// CheckStreaks compares every cached streak against a fresh computation.
func (t *Tracker) CheckStreaks() ([]Drift, error) {
	c, err := t.clock()
	if err != nil {
		return nil, err
	}
	habits, err := t.store.GetAllHabits(true, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}
	byHabit, err := t.completionsByHabit()
	if err != nil {
		return nil, err
	}
	cached, err := t.store.GetAllHabitStreaks()
	if err != nil {
		return nil, fmt.Errorf("failed to load cached streaks: %w", err)
	}
	cache := make(map[string]models.HabitStreak, len(cached))
	for _, s := range cached {
		cache[s.HabitID] = s
	}

	var drifts []Drift
	for _, h := range habits {
		computed := streak.ComputeStreak(h, byHabit[h.ID], c.now, c.opts)
		row, ok := cache[h.ID]
		if !ok {
			drifts = append(drifts, Drift{Habit: h, Computed: computed})
			continue
		}
		if row.CurrentStreak != computed.CurrentStreak ||
			row.BestStreak != computed.BestStreak ||
			row.LastCompletionDate != computed.LastCompletionDate {
			row := row
			drifts = append(drifts, Drift{Habit: h, Cached: &row, Computed: computed})
		}
	}
	return drifts, nil
}

// RecomputeAll rewrites the cached streak of every non-deleted habit and
// returns how many rows were written.
func (t *Tracker) RecomputeAll() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, err := t.clock()
	if err != nil {
		return 0, err
	}
	habits, err := t.store.GetAllHabits(true, false)
	if err != nil {
		return 0, fmt.Errorf("failed to load habits: %w", err)
	}
	byHabit, err := t.completionsByHabit()
	if err != nil {
		return 0, err
	}

	var errs []error
	written := 0
	for _, h := range habits {
		result := streak.ComputeStreak(h, byHabit[h.ID], c.now, c.opts)
		if err := t.store.UpsertHabitStreak(result.ToModel(h.ID, c.now.UTC())); err != nil {
			errs = append(errs, fmt.Errorf("habit %q: %w", h.Name, err))
			continue
		}
		written++
	}
	return written, errors.Join(errs...)
}

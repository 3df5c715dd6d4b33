package habits

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// backfillNote marks slips synthesized when a habit switches to auto-complete tracking.
const backfillNote = "backfilled"

// LogRequest records progress on a habit.
type LogRequest struct {
	HabitID string `validate:"required"`
	Day     string // YYYY-MM-DD, empty for today
	Count   int    `validate:"min=1"`
	Note    string `validate:"max=500"`
}

// Create stores a new habit. ID and CreatedAt are assigned when empty.
func (t *Tracker) Create(h models.Habit) (models.Habit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, err := t.clock()
	if err != nil {
		return models.Habit{}, err
	}

	h.Name = strings.TrimSpace(h.Name)
	h.Description = strings.TrimSpace(h.Description)
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = c.now
	}
	h.ArchivedAt, h.DeletedAt = nil, nil
	h.ApplyDefaults()
	if err := h.Validate(); err != nil {
		return models.Habit{}, err
	}
	if err := t.ensureNameFree(h.Name, h.ID); err != nil {
		return models.Habit{}, err
	}

	if err := t.store.AddHabit(h); err != nil {
		return models.Habit{}, fmt.Errorf("failed to add habit: %w", err)
	}
	t.recompute(c, h, nil)
	return h, nil
}

func (t *Tracker) ensureNameFree(name, id string) error {
	existing, err := t.store.GetHabitByName(name)
	switch {
	case err == nil && existing.ID != id:
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("failed to check habit name: %w", err)
	}
	return nil
}

// Update replaces a habit's editable fields and recomputes its streak.
// Switching an avoid habit into auto-complete tracking rewrites its history:
// every day since creation, up to yesterday, that did not meet the target becomes a slip.
func (t *Tracker) Update(h models.Habit) (Change, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.update(h)
}

func (t *Tracker) update(h models.Habit) (Change, error) {
	c, err := t.clock()
	if err != nil {
		return Change{}, err
	}

	prev, err := t.habit(h.ID)
	if err != nil {
		return Change{}, err
	}

	// Identity and lifecycle fields are not editable here.
	h.CreatedAt, h.ArchivedAt, h.DeletedAt = prev.CreatedAt, prev.ArchivedAt, prev.DeletedAt
	h.Name = strings.TrimSpace(h.Name)
	h.Description = strings.TrimSpace(h.Description)
	if h.HabitType == models.HabitTypeBuild {
		h.TrackingMode = models.TrackingManual
	}
	h.ApplyDefaults()
	if err := h.Validate(); err != nil {
		return Change{}, err
	}
	if h.Name != prev.Name {
		if err := t.ensureNameFree(h.Name, h.ID); err != nil {
			return Change{}, err
		}
	}

	completions, err := t.store.GetHabitCompletions(h.ID)
	if err != nil {
		return Change{}, fmt.Errorf("failed to load completions: %w", err)
	}

	if err := t.store.UpdateHabit(h); err != nil {
		return Change{}, fmt.Errorf("failed to update habit: %w", err)
	}

	if !prev.IsSlipTracking() && h.IsSlipTracking() {
		slips := slipBackfill(c, prev, completions)
		if err := t.store.ReplaceHabitCompletions(h.ID, slips); err != nil {
			if rbErr := t.store.UpdateHabit(prev); rbErr != nil {
				logger.Error("Failed to roll back habit update", "habit", prev.Name, "error", rbErr)
			}
			return Change{}, fmt.Errorf("failed to convert history to slips: %w", err)
		}
		logger.Info("Converted habit history to slips", "habit", h.Name, "slips", len(slips))
		completions = slips
	}

	return t.changed(c, h, c.today, completions), nil
}

// SetTracking changes how an avoid habit is tracked. Build habits are always manual.
func (t *Tracker) SetTracking(habitID string, habitType models.HabitType, mode models.TrackingMode) (Change, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, err := t.habit(habitID)
	if err != nil {
		return Change{}, err
	}
	h.HabitType = habitType
	h.TrackingMode = mode
	return t.update(h)
}

// slipBackfill converts a habit's records into slips for an auto-complete
// history. Days that met the target stay clean; every other day from the
// creation day through yesterday gets one slip. Today is left untouched.
func slipBackfill(c clock, h models.Habit, completions []models.HabitCompletion) []models.HabitCompletion {
	target := targetOf(h)
	totals := make(map[string]int)
	for _, r := range completions {
		if r.HabitID == h.ID {
			totals[r.CompletionDate] += r.Count
		}
	}

	var slips []models.HabitCompletion
	for d := c.createdDay(h); d.Before(c.today); d = utils.AddDays(d, 1) {
		key := utils.FormatDay(d)
		if totals[key] >= target {
			continue
		}
		slips = append(slips, models.HabitCompletion{
			ID:             uuid.NewString(),
			HabitID:        h.ID,
			CompletionDate: key,
			Count:          1,
			Note:           backfillNote,
			CreatedAt:      c.now.UTC(),
		})
	}
	return slips
}

// Log adds a completion record. For auto-complete avoid habits the record is a slip.
func (t *Tracker) Log(req LogRequest) (Change, error) {
	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				if fe.Field() == "Count" {
					return Change{}, fmt.Errorf("%w, got %d", ErrInvalidCount, req.Count)
				}
			}
		}
		return Change{}, fmt.Errorf("invalid log request: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	c, err := t.clock()
	if err != nil {
		return Change{}, err
	}
	h, err := t.activeHabit(req.HabitID)
	if err != nil {
		return Change{}, err
	}
	day, err := c.trackedDay(h, req.Day)
	if err != nil {
		return Change{}, err
	}

	completions, err := t.store.GetHabitCompletions(h.ID)
	if err != nil {
		return Change{}, fmt.Errorf("failed to load completions: %w", err)
	}

	rec := models.HabitCompletion{
		ID:             uuid.NewString(),
		HabitID:        h.ID,
		CompletionDate: utils.FormatDay(day),
		Count:          req.Count,
		Note:           strings.TrimSpace(req.Note),
		CreatedAt:      c.now.UTC(),
	}
	if err := t.store.AddHabitCompletion(rec); err != nil {
		return Change{}, fmt.Errorf("failed to record completion: %w", err)
	}
	logger.Debug("Completion recorded", "habit", h.Name, "day", rec.CompletionDate, "count", rec.Count)

	return t.changed(c, h, day, append(completions, rec)), nil
}

// Undo removes the most recently recorded completion on day.
func (t *Tracker) Undo(habitID, day string) (Change, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, err := t.clock()
	if err != nil {
		return Change{}, err
	}
	h, err := t.activeHabit(habitID)
	if err != nil {
		return Change{}, err
	}
	d, err := c.trackedDay(h, day)
	if err != nil {
		return Change{}, err
	}
	key := utils.FormatDay(d)

	records, err := t.store.GetHabitCompletionsForDay(h.ID, key)
	if err != nil {
		return Change{}, fmt.Errorf("failed to load completions: %w", err)
	}
	if len(records) == 0 {
		return Change{}, fmt.Errorf("%w: %s on %s", ErrNothingToUndo, h.Name, key)
	}
	last := records[len(records)-1]

	completions, err := t.store.GetHabitCompletions(h.ID)
	if err != nil {
		return Change{}, fmt.Errorf("failed to load completions: %w", err)
	}
	if err := t.store.DeleteHabitCompletion(last.ID); err != nil {
		return Change{}, fmt.Errorf("failed to delete completion: %w", err)
	}

	return t.changed(c, h, d, without(completions, last.ID)), nil
}

// Toggle flips a day between done and not done. A day that met the target loses
// all of its records; otherwise one record fills the remaining count.
func (t *Tracker) Toggle(habitID, day string) (Change, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, err := t.clock()
	if err != nil {
		return Change{}, err
	}
	h, err := t.activeHabit(habitID)
	if err != nil {
		return Change{}, err
	}
	d, err := c.trackedDay(h, day)
	if err != nil {
		return Change{}, err
	}
	key := utils.FormatDay(d)

	completions, err := t.store.GetHabitCompletions(h.ID)
	if err != nil {
		return Change{}, fmt.Errorf("failed to load completions: %w", err)
	}

	records := onDay(completions, key)
	sum := 0
	for _, r := range records {
		sum += r.Count
	}

	target := targetOf(h)
	if sum >= target {
		ids := make([]string, 0, len(records))
		for _, r := range records {
			if err := t.store.DeleteHabitCompletion(r.ID); err != nil {
				t.resync(c, h)
				return Change{}, fmt.Errorf("failed to delete completion: %w", err)
			}
			ids = append(ids, r.ID)
		}
		return t.changed(c, h, d, without(completions, ids...)), nil
	}

	rec := models.HabitCompletion{
		ID:             uuid.NewString(),
		HabitID:        h.ID,
		CompletionDate: key,
		Count:          target - sum,
		CreatedAt:      c.now.UTC(),
	}
	if err := t.store.AddHabitCompletion(rec); err != nil {
		return Change{}, fmt.Errorf("failed to record completion: %w", err)
	}
	return t.changed(c, h, d, append(completions, rec)), nil
}

package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type FrequencyType string

const (
	FrequencyDaily        FrequencyType = "daily"
	FrequencyWeekly       FrequencyType = "weekly"
	FrequencySpecificDays FrequencyType = "specific_days"
)

type HabitType string

const (
	HabitTypeBuild HabitType = "build"
	HabitTypeAvoid HabitType = "avoid"
)

type TrackingMode string

const (
	TrackingManual       TrackingMode = "manual"
	TrackingAutoComplete TrackingMode = "auto-complete"
)

// Habit represents a recurring practice to track
type Habit struct {
	ID             string        `json:"id" validate:"required"`
	Name           string        `json:"name" validate:"required,max=80"`
	Description    string        `json:"description,omitempty" validate:"max=500"`
	FrequencyType  FrequencyType `json:"frequency_type" validate:"oneof=daily weekly specific_days"`
	FrequencyValue int           `json:"frequency_value" validate:"gte=0,lte=7"`
	SpecificDays   []int         `json:"specific_days,omitempty" validate:"dive,gte=1,lte=7"` // 1=Monday .. 7=Sunday
	TargetCount    int           `json:"target_count" validate:"gte=1"`
	HabitType      HabitType     `json:"habit_type" validate:"oneof=build avoid"`
	TrackingMode   TrackingMode  `json:"tracking_mode" validate:"oneof=manual auto-complete"`
	CreatedAt      time.Time     `json:"created_at" validate:"required"`
	ArchivedAt     *time.Time    `json:"archived_at,omitempty"`
	DeletedAt      *time.Time    `json:"deleted_at,omitempty"`
}

// HabitCompletion is one unit of recorded progress for a habit on a calendar day.
// Several completions may exist for the same habit and day; their counts add up.
type HabitCompletion struct {
	ID             string    `json:"id"`
	HabitID        string    `json:"habit_id"`
	CompletionDate string    `json:"completion_date"` // YYYY-MM-DD format
	Count          int       `json:"count"`
	Note           string    `json:"note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// HabitStreak is the cached streak for a habit. It is recomputed after every
// completion change and is never read back as a source of truth.
type HabitStreak struct {
	HabitID            string    `json:"habit_id"`
	CurrentStreak      int       `json:"current_streak"`
	BestStreak         int       `json:"best_streak"`
	LastCompletionDate string    `json:"last_completion_date,omitempty"` // YYYY-MM-DD, empty when absent
	UpdatedAt          time.Time `json:"updated_at"`
}

// ApplyDefaults fills zero-valued configuration with the defaults a new habit gets.
func (h *Habit) ApplyDefaults() {
	if h.FrequencyType == "" {
		h.FrequencyType = FrequencyDaily
	}
	if h.HabitType == "" {
		h.HabitType = HabitTypeBuild
	}
	if h.TrackingMode == "" {
		h.TrackingMode = TrackingManual
	}
	if h.TargetCount == 0 {
		h.TargetCount = 1
	}
	if h.FrequencyType == FrequencyWeekly && h.FrequencyValue == 0 {
		h.FrequencyValue = 1
	}
}

func (h *Habit) Validate() error {
	if err := validate.Struct(h); err != nil {
		return fmt.Errorf("invalid habit: %w", err)
	}

	switch h.FrequencyType {
	case FrequencyWeekly:
		if h.FrequencyValue < 1 {
			return fmt.Errorf("weekly habits need a frequency value of at least 1")
		}
	case FrequencySpecificDays:
		if len(h.SpecificDays) == 0 {
			return fmt.Errorf("specific days must be specified for specific_days frequency")
		}
	}

	if h.TrackingMode == TrackingAutoComplete && h.HabitType != HabitTypeAvoid {
		return fmt.Errorf("auto-complete tracking is only available for avoid habits")
	}

	return nil
}

// IsSlipTracking reports whether recorded completions mean failures rather than successes.
func (h *Habit) IsSlipTracking() bool {
	return h.HabitType == HabitTypeAvoid && h.TrackingMode == TrackingAutoComplete
}

// IsActive reports whether the habit is neither archived nor deleted.
func (h *Habit) IsActive() bool {
	return h.ArchivedAt == nil && h.DeletedAt == nil
}

// FormatFrequency returns a human-readable string describing how often the habit is due
func (h *Habit) FormatFrequency() string {
	switch h.FrequencyType {
	case FrequencyWeekly:
		return fmt.Sprintf("%dx per week", h.FrequencyValue)
	case FrequencySpecificDays:
		names := make([]string, 0, len(h.SpecificDays))
		for _, d := range h.SpecificDays {
			names = append(names, ISOWeekday(d).String()[:3])
		}
		return fmt.Sprintf("on %s", strings.Join(names, ","))
	default:
		return "daily"
	}
}

// ISOWeekday converts a 1..7 (Monday..Sunday) weekday number to a time.Weekday.
func ISOWeekday(n int) time.Weekday {
	return time.Weekday(n % 7)
}

// WeekdayNumber converts a time.Weekday to its 1..7 (Monday..Sunday) number.
func WeekdayNumber(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

// EncodeDays serializes weekday numbers as a comma-separated list for storage.
func EncodeDays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// DecodeDays parses the output of EncodeDays. An empty string yields nil.
func DecodeDays(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid weekday %q: %w", p, err)
		}
		days = append(days, d)
	}
	return days, nil
}

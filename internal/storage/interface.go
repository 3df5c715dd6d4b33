package storage

import "github.com/julianstephens/habitual/internal/models"

// Provider is the persistence layer behind the CLI and TUI.
// Lookups of missing rows return errors wrapping sql.ErrNoRows.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	ArchiveHabit(id string) error
	UnarchiveHabit(id string) error
	DeleteHabit(id string) error
	RestoreHabit(id string) error

	// Habit Completions
	AddHabitCompletion(models.HabitCompletion) error
	GetHabitCompletions(habitID string) ([]models.HabitCompletion, error)
	GetHabitCompletionsForDay(habitID, day string) ([]models.HabitCompletion, error)
	GetCompletionsInRange(startDay, endDay string) ([]models.HabitCompletion, error)
	DeleteHabitCompletion(id string) error
	// ReplaceHabitCompletions deletes every completion of habitID and inserts
	// completions in a single transaction. The habit's cached streak is dropped too.
	ReplaceHabitCompletions(habitID string, completions []models.HabitCompletion) error

	// Habit Streaks
	GetHabitStreak(habitID string) (models.HabitStreak, error)
	UpsertHabitStreak(models.HabitStreak) error
	DeleteHabitStreak(habitID string) error

	// Bulk Retrieval for Migration
	GetAllHabitCompletions() ([]models.HabitCompletion, error)
	GetAllHabitStreaks() ([]models.HabitStreak, error)

	// Utils
	GetConfigPath() string
}

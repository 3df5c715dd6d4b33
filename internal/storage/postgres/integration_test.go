package postgres

import (
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

// TestStore_Integration runs the store against a real database.
// Set HABITUAL_TEST_POSTGRES to run it, e.g.
// HABITUAL_TEST_POSTGRES="postgres://habitual@localhost:5432/habitual_test?sslmode=disable"
func TestStore_Integration(t *testing.T) {
	connStr := os.Getenv("HABITUAL_TEST_POSTGRES")
	if connStr == "" {
		t.Skip("HABITUAL_TEST_POSTGRES not set, skipping PostgreSQL integration test")
	}

	store := New(connStr)
	if err := store.Init(); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()

	t.Cleanup(func() {
		for _, table := range []string{"habit_streaks", "habit_completions", "habits", "settings", "schema_version"} {
			_, _ = store.db.Exec("DELETE FROM " + table)
		}
	})

	t.Run("Settings", func(t *testing.T) {
		settings, err := store.GetSettings()
		if err != nil {
			t.Fatalf("Failed to get settings: %v", err)
		}
		if settings.WeekStart != constants.DefaultWeekStart {
			t.Errorf("Expected week start %s, got %s", constants.DefaultWeekStart, settings.WeekStart)
		}

		settings.WeekStart = constants.WeekStartSunday
		if err := store.SaveSettings(settings); err != nil {
			t.Fatalf("Failed to save settings: %v", err)
		}

		updated, err := store.GetSettings()
		if err != nil {
			t.Fatalf("Failed to get updated settings: %v", err)
		}
		if updated.WeekStart != constants.WeekStartSunday {
			t.Errorf("Expected week start sunday, got %s", updated.WeekStart)
		}
	})

	created := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	habit := models.Habit{
		ID:             "pg-habit",
		Name:           "Integration Habit",
		FrequencyType:  models.FrequencyWeekly,
		FrequencyValue: 3,
		TargetCount:    1,
		HabitType:      models.HabitTypeBuild,
		TrackingMode:   models.TrackingManual,
		CreatedAt:      created,
	}

	t.Run("Habits", func(t *testing.T) {
		if err := store.AddHabit(habit); err != nil {
			t.Fatalf("Failed to add habit: %v", err)
		}

		got, err := store.GetHabitByName(habit.Name)
		if err != nil {
			t.Fatalf("Failed to get habit by name: %v", err)
		}
		if got.FrequencyValue != 3 || !got.CreatedAt.Equal(created) {
			t.Errorf("Unexpected habit: %+v", got)
		}

		if err := store.ArchiveHabit(habit.ID); err != nil {
			t.Fatalf("Failed to archive habit: %v", err)
		}
		active, _ := store.GetAllHabits(false, false)
		if len(active) != 0 {
			t.Errorf("Expected archived habit to be hidden, got %d", len(active))
		}
		if err := store.UnarchiveHabit(habit.ID); err != nil {
			t.Fatalf("Failed to unarchive habit: %v", err)
		}
	})

	t.Run("Completions", func(t *testing.T) {
		now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
		for i, day := range []string{"2026-10-17", "2026-10-18", "2026-10-18"} {
			c := models.HabitCompletion{
				ID:             "pg-c" + string(rune('0'+i)),
				HabitID:        habit.ID,
				CompletionDate: day,
				Count:          1,
				CreatedAt:      now.Add(time.Duration(i) * time.Second),
			}
			if err := store.AddHabitCompletion(c); err != nil {
				t.Fatalf("Failed to add completion: %v", err)
			}
		}

		day, err := store.GetHabitCompletionsForDay(habit.ID, "2026-10-18")
		if err != nil {
			t.Fatalf("Failed to get completions for day: %v", err)
		}
		if len(day) != 2 || day[1].ID != "pg-c2" {
			t.Errorf("Unexpected completions for day: %+v", day)
		}

		if err := store.ReplaceHabitCompletions(habit.ID, day[:1]); err != nil {
			t.Fatalf("Failed to replace completions: %v", err)
		}
		all, _ := store.GetHabitCompletions(habit.ID)
		if len(all) != 1 {
			t.Errorf("Expected 1 completion after replace, got %d", len(all))
		}
	})

	t.Run("Streaks", func(t *testing.T) {
		st := models.HabitStreak{HabitID: habit.ID, CurrentStreak: 1, BestStreak: 2, LastCompletionDate: "2026-10-18", UpdatedAt: time.Now()}
		if err := store.UpsertHabitStreak(st); err != nil {
			t.Fatalf("Failed to upsert streak: %v", err)
		}
		got, err := store.GetHabitStreak(habit.ID)
		if err != nil || got.BestStreak != 2 {
			t.Errorf("Unexpected streak %+v, %v", got, err)
		}
		if err := store.DeleteHabitStreak(habit.ID); err != nil {
			t.Fatalf("Failed to delete streak: %v", err)
		}
		if _, err := store.GetHabitStreak(habit.ID); !errors.Is(err, sql.ErrNoRows) {
			t.Errorf("Expected sql.ErrNoRows, got %v", err)
		}
	})
}

package system

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
)

func setupTestInitDB(t *testing.T) (*cli.Context, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	ctx := cli.NewContext(store)
	ctx.Out = &bytes.Buffer{}
	return ctx, dbPath
}

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _ := setupTestInitDB(t)

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, dbPath := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get initial settings: %v", err)
	}
	settings.WeekStart = constants.WeekStartSunday
	if err := ctx.Store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save modified settings: %v", err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init with force failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatalf("database file was not recreated after force")
	}

	fresh, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings after force: %v", err)
	}
	if fresh.WeekStart != constants.DefaultWeekStart {
		t.Errorf("expected default week start %q, got %q", constants.DefaultWeekStart, fresh.WeekStart)
	}
}

func TestInitCmd_ForceWithNonExistentDatabase(t *testing.T) {
	ctx, dbPath := setupTestInitDB(t)

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init with force on non-existent database failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created")
	}
}

func TestInitCmd_ForceRejectsSameSource(t *testing.T) {
	ctx, dbPath := setupTestInitDB(t)

	err := (&InitCmd{Force: true, Source: dbPath}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "source and destination are the same") {
		t.Errorf("expected same-path error, got %v", err)
	}
}

func TestInitCmd_MigratesFromSource(t *testing.T) {
	sourcePath := filepath.Join(t.TempDir(), "source.db")
	source := sqlite.NewStore(sourcePath)
	if err := source.Init(); err != nil {
		t.Fatalf("failed to init source: %v", err)
	}

	settings := models.DefaultSettings()
	settings.Timezone = "UTC"
	settings.HeatmapDays = 30
	if err := source.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save source settings: %v", err)
	}

	now := time.Now().UTC()
	active := models.Habit{ID: "h1", Name: "Read", FrequencyType: models.FrequencyDaily, TargetCount: 1,
		HabitType: models.HabitTypeBuild, TrackingMode: models.TrackingManual, CreatedAt: now.Add(-48 * time.Hour)}
	gone := active
	gone.ID, gone.Name = "h2", "Old"
	for _, h := range []models.Habit{active, gone} {
		if err := source.AddHabit(h); err != nil {
			t.Fatalf("failed to add habit: %v", err)
		}
	}
	if err := source.DeleteHabit("h2"); err != nil {
		t.Fatalf("failed to delete habit: %v", err)
	}
	for i, day := range []string{now.AddDate(0, 0, -1).Format(constants.DateFormat), now.Format(constants.DateFormat)} {
		c := models.HabitCompletion{ID: "c" + string(rune('1'+i)), HabitID: "h1", CompletionDate: day, Count: 1, CreatedAt: now}
		if err := source.AddHabitCompletion(c); err != nil {
			t.Fatalf("failed to add completion: %v", err)
		}
	}
	source.Close()

	ctx, _ := setupTestInitDB(t)
	if err := (&InitCmd{Source: sourcePath}).Run(ctx); err != nil {
		t.Fatalf("init with source failed: %v", err)
	}

	got, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}
	if got.HeatmapDays != 30 || got.Timezone != "UTC" {
		t.Errorf("settings not migrated: %+v", got)
	}

	all, err := ctx.Store.GetAllHabits(true, true)
	if err != nil {
		t.Fatalf("failed to list habits: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 habits including the deleted one, got %d", len(all))
	}

	completions, err := ctx.Store.GetHabitCompletions("h1")
	if err != nil {
		t.Fatalf("failed to list completions: %v", err)
	}
	if len(completions) != 2 {
		t.Errorf("expected 2 completions, got %d", len(completions))
	}

	cached, err := ctx.Store.GetHabitStreak("h1")
	if err != nil {
		t.Fatalf("expected a rebuilt streak row: %v", err)
	}
	if cached.CurrentStreak != 2 {
		t.Errorf("expected rebuilt current streak 2, got %d", cached.CurrentStreak)
	}
}

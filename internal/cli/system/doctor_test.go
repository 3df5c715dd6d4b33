package system

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/habits"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
)

func setupTestDoctorDB(t *testing.T) (*cli.Context, *sqlite.Store, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	out := &bytes.Buffer{}
	ctx := cli.NewContext(store)
	ctx.Out = out
	return ctx, store, out
}

func addTestHabit(t *testing.T, ctx *cli.Context, name string) models.Habit {
	t.Helper()
	h, err := ctx.Tracker.Create(models.Habit{Name: name, CreatedAt: time.Now().Add(-72 * time.Hour)})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	return h
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, _, out := setupTestDoctorDB(t)
	addTestHabit(t, ctx, "Read")

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor command failed on healthy database: %v\n%s", err, out.String())
	}
	// Missing backups is a warning, not a failure
	if !strings.Contains(out.String(), "⚠ Backups present: WARNING") {
		t.Errorf("expected backup warning, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "✓ Streak cache: OK") {
		t.Errorf("expected streak cache to be consistent, got:\n%s", out.String())
	}
}

func TestDoctorCmd_WithBackups(t *testing.T) {
	ctx, _, out := setupTestDoctorDB(t)

	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor command failed with backups present: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Backups present: OK") {
		t.Errorf("expected backups check to pass, got:\n%s", out.String())
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	ctx, store, _ := setupTestDoctorDB(t)

	db := store.GetDB()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatalf("failed to insert corrupted schema version: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail with corrupted schema")
	}
}

func TestCheckMigrationsComplete_Incomplete(t *testing.T) {
	ctx, store, _ := setupTestDoctorDB(t)

	if _, err := store.GetDB().Exec("UPDATE schema_version SET version = 0"); err != nil {
		t.Fatalf("failed to downgrade schema version: %v", err)
	}
	if err := checkMigrationsComplete(ctx); err == nil {
		t.Error("checkMigrationsComplete should fail with incomplete migrations")
	}
}

func TestCheckCompletionRecords(t *testing.T) {
	ctx, _, _ := setupTestDoctorDB(t)
	h := addTestHabit(t, ctx, "Read")

	if err := checkCompletionRecords(ctx); err != nil {
		t.Fatalf("expected clean records, got %v", err)
	}

	bad := models.HabitCompletion{ID: "bad", HabitID: h.ID, CompletionDate: "19/10/2026", Count: 1, CreatedAt: time.Now()}
	if err := ctx.Store.AddHabitCompletion(bad); err != nil {
		t.Fatalf("failed to insert corrupt completion: %v", err)
	}

	err := checkCompletionRecords(ctx)
	if err == nil || !strings.Contains(err.Error(), "invalid date format") {
		t.Errorf("expected invalid date error, got %v", err)
	}
}

func TestCheckCompletionRecords_BeforeCreationWarns(t *testing.T) {
	ctx, _, _ := setupTestDoctorDB(t)
	h := addTestHabit(t, ctx, "Read")

	early := models.HabitCompletion{
		ID:             "early",
		HabitID:        h.ID,
		CompletionDate: "2000-01-01",
		Count:          1,
		CreatedAt:      time.Now(),
	}
	if err := ctx.Store.AddHabitCompletion(early); err != nil {
		t.Fatalf("failed to add completion: %v", err)
	}

	err := checkCompletionRecords(ctx)
	if _, ok := err.(*warning); !ok {
		t.Errorf("expected a warning, got %v", err)
	}
}

func TestDoctorCmd_StreakDrift(t *testing.T) {
	ctx, _, out := setupTestDoctorDB(t)
	h := addTestHabit(t, ctx, "Read")
	if _, err := ctx.Tracker.Log(habits.LogRequest{HabitID: h.ID, Count: 1}); err != nil {
		t.Fatalf("failed to log: %v", err)
	}
	if err := ctx.Store.DeleteHabitStreak(h.ID); err != nil {
		t.Fatalf("failed to drop cached streak: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("stale streaks should only warn: %v", err)
	}
	if !strings.Contains(out.String(), "Read: no cached streak (expected 1/1)") {
		t.Errorf("expected drift report, got:\n%s", out.String())
	}

	out.Reset()
	if err := (&DoctorCmd{Fix: true}).Run(ctx); err != nil {
		t.Fatalf("doctor --fix failed: %v", err)
	}
	if !strings.Contains(out.String(), "Rebuilt 1 cached streak(s)") {
		t.Errorf("expected rebuild report, got:\n%s", out.String())
	}

	drifts, err := ctx.Tracker.CheckStreaks()
	if err != nil {
		t.Fatalf("CheckStreaks failed: %v", err)
	}
	if len(drifts) != 0 {
		t.Errorf("expected no drift after --fix, got %d", len(drifts))
	}
}

func TestCheckClock(t *testing.T) {
	if err := checkClock(nil); err != nil {
		t.Errorf("clock check failed: %v", err)
	}
}

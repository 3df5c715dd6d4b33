package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/utils"
)

type DoctorCmd struct {
	Fix bool `help:"Rewrite cached streaks that disagree with the completion history."`
}

// warning is a check result that is reported but does not fail the run.
type warning struct{ msg string }

func (w *warning) Error() string { return w.msg }

func warn(format string, args ...any) error {
	return &warning{msg: fmt.Sprintf(format, args...)}
}

type check struct {
	name    string
	needsDB bool
	run     func(ctx *cli.Context) error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []check{
		{name: "Database reachable", run: checkDBReachable},
		{name: "Schema version", needsDB: true, run: checkSchemaVersion},
		{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
		{name: "Backups present", run: checkBackupsPresent},
		{name: "Settings", needsDB: true, run: checkSettings},
		{name: "Clock/timezone", run: checkClock},
		{name: "Habit configuration", needsDB: true, run: checkHabits},
		{name: "Orphaned completions", needsDB: true, run: checkOrphanedCompletions},
		{name: "Completion records", needsDB: true, run: checkCompletionRecords},
		{name: "Streak cache", needsDB: true, run: cmd.checkStreakCache},
	}

	hasError := false
	dbReachable := false
	for i, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}

		err := c.run(ctx)
		var w *warning
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
			if i == 0 {
				dbReachable = true
			}
		case errors.As(err, &w):
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", w)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	s, ok := ctx.Store.(sqlStore)
	if !ok {
		return nil
	}
	db := s.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func schemaVersions(ctx *cli.Context) (current, latest int, err error) {
	runner, err := runnerFor(ctx)
	if err != nil {
		return 0, 0, err
	}
	current, err = runner.GetCurrentVersion()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	latest, err = runner.GetLatestVersion()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get latest schema version: %w", err)
	}
	return current, latest, nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := schemaVersions(ctx)
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, err := schemaVersions(ctx)
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run '%s migrate')", current, latest, constants.AppName)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if !ctx.IsSQLite() {
		return nil
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return warn("failed to list backups: %v", err)
	}
	if len(backups) == 0 {
		return warn("no backups found - consider creating one with '%s backup create'", constants.AppName)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return settings.Validate()
}

func checkClock(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkHabits(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(true, false)
	if err != nil {
		return fmt.Errorf("failed to get habits: %w", err)
	}
	var errs []error
	for _, h := range habits {
		if err := h.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("habit %q: %w", h.Name, err))
		}
	}
	return errors.Join(errs...)
}

func checkOrphanedCompletions(ctx *cli.Context) error {
	s, ok := ctx.Store.(sqlStore)
	if !ok {
		return nil
	}
	var orphaned int
	err := s.GetDB().QueryRow(`
		SELECT COUNT(*)
		FROM habit_completions hc
		LEFT JOIN habits h ON hc.habit_id = h.id
		WHERE h.id IS NULL
	`).Scan(&orphaned)
	if err != nil {
		return fmt.Errorf("failed to check orphaned completions: %w", err)
	}
	if orphaned > 0 {
		return fmt.Errorf("found %d completions referencing non-existent habits", orphaned)
	}
	return nil
}

// checkCompletionRecords validates day keys, counts and timestamps. Dates
// before the habit's creation day are only warned about, since a timezone
// change can legitimately shift the creation day.
func checkCompletionRecords(ctx *cli.Context) error {
	completions, err := ctx.Store.GetAllHabitCompletions()
	if err != nil {
		return fmt.Errorf("failed to get completions: %w", err)
	}
	habits, err := ctx.Store.GetAllHabits(true, true)
	if err != nil {
		return fmt.Errorf("failed to get habits: %w", err)
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return err
	}

	created := make(map[string]time.Time, len(habits))
	for _, h := range habits {
		created[h.ID] = utils.DayOf(h.CreatedAt.In(loc))
	}

	badDates, badCounts, badTimestamps, early := 0, 0, 0, 0
	for _, c := range completions {
		day, err := utils.ParseDay(c.CompletionDate)
		if err != nil {
			badDates++
			continue
		}
		if c.Count < 1 {
			badCounts++
		}
		if c.CreatedAt.IsZero() {
			badTimestamps++
		}
		if start, ok := created[c.HabitID]; ok && day.Before(start) {
			early++
		}
	}

	var errs []error
	if badDates > 0 {
		errs = append(errs, fmt.Errorf("found %d completions with invalid date format", badDates))
	}
	if badCounts > 0 {
		errs = append(errs, fmt.Errorf("found %d completions with a non-positive count", badCounts))
	}
	if badTimestamps > 0 {
		errs = append(errs, fmt.Errorf("found %d completions with corrupted timestamps", badTimestamps))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if early > 0 {
		return warn("found %d completions dated before their habit was created", early)
	}
	return nil
}

func (cmd *DoctorCmd) checkStreakCache(ctx *cli.Context) error {
	drifts, err := ctx.Tracker.CheckStreaks()
	if err != nil {
		return fmt.Errorf("failed to check streaks: %w", err)
	}
	if len(drifts) == 0 {
		return nil
	}

	for _, d := range drifts {
		if d.Cached == nil {
			ctx.Printf("   %s: no cached streak (expected %d/%d)\n", d.Habit.Name, d.Computed.CurrentStreak, d.Computed.BestStreak)
			continue
		}
		ctx.Printf("   %s: cached %d/%d, expected %d/%d\n", d.Habit.Name,
			d.Cached.CurrentStreak, d.Cached.BestStreak, d.Computed.CurrentStreak, d.Computed.BestStreak)
	}

	if !cmd.Fix {
		return warn("%d cached streak(s) are stale (run '%s doctor --fix' to rebuild)", len(drifts), constants.AppName)
	}
	n, err := ctx.Tracker.RecomputeAll()
	if err != nil {
		return fmt.Errorf("failed to rebuild streaks: %w", err)
	}
	ctx.Printf("   Rebuilt %d cached streak(s)\n", n)
	return nil
}

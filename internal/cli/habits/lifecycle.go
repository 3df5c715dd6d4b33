package habits

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
)

type TrackCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Type  string `help:"Habit type." enum:"build,avoid" default:"avoid"`
	Mode  string `help:"Tracking mode for avoid habits." enum:"manual,auto-complete" default:"manual"`
	Yes   bool   `help:"Skip the confirmation when history will be rewritten." short:"y"`
}

func (c *TrackCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit, false)
	if err != nil {
		return err
	}

	habitType := models.HabitType(c.Type)
	mode := models.TrackingMode(c.Mode)
	if habitType == models.HabitTypeBuild && mode == models.TrackingAutoComplete {
		return fmt.Errorf("auto-complete tracking is only available for avoid habits")
	}

	entering := !h.IsSlipTracking() && habitType == models.HabitTypeAvoid && mode == models.TrackingAutoComplete
	if entering && !c.Yes {
		ctx.Println("Switching to auto-complete replaces this habit's history:")
		ctx.Println("every past day that was not marked done becomes a slip.")
		ok, err := ctx.Confirm("Continue?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Cancelled.")
			return nil
		}
	}

	change, err := ctx.Tracker.SetTracking(h.ID, habitType, mode)
	if err != nil {
		return err
	}

	ctx.Printf("%s is now tracked as %s\n", change.Habit.Name, describe(change.Habit))
	ctx.Println(streakLabel(change.Habit, change.Streak))
	return nil
}

type ArchiveCmd struct {
	Habit     string `arg:"" help:"Habit name or ID."`
	Unarchive bool   `help:"Unarchive the habit instead."`
}

func (c *ArchiveCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit, false)
	if err != nil {
		return err
	}

	if c.Unarchive {
		if err := ctx.Store.UnarchiveHabit(h.ID); err != nil {
			return notInState(err, h.Name, "archived")
		}
		refreshStreak(ctx, h.ID)
		ctx.Printf("Unarchived habit: %s\n", h.Name)
		return nil
	}

	if err := ctx.Store.ArchiveHabit(h.ID); err != nil {
		return notInState(err, h.Name, "active")
	}
	ctx.Printf("Archived habit: %s\n", h.Name)
	return nil
}

type DeleteCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit, false)
	if err != nil {
		return err
	}

	if err := ctx.Store.DeleteHabit(h.ID); err != nil {
		return err
	}

	ctx.Printf("Deleted habit: %s\n", h.Name)
	ctx.Printf("(This is a soft delete. Use '%s habit restore' to undo)\n", constants.AppName)
	return nil
}

type RestoreCmd struct {
	Habit string `arg:"" help:"Name or ID of the deleted habit."`
}

func (c *RestoreCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit, true)
	if err != nil {
		return err
	}
	if h.DeletedAt == nil {
		return fmt.Errorf("habit %q is not deleted", h.Name)
	}

	if _, err := ctx.Store.GetHabitByName(h.Name); err == nil {
		return fmt.Errorf("an active habit named %q already exists; rename it first", h.Name)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if err := ctx.Store.RestoreHabit(h.ID); err != nil {
		return err
	}
	refreshStreak(ctx, h.ID)

	ctx.Printf("Restored habit: %s\n", h.Name)
	return nil
}

// refreshStreak recomputes the cached streak of a habit coming back into view.
func refreshStreak(ctx *cli.Context, habitID string) {
	if _, err := ctx.Tracker.RefreshStreak(habitID); err != nil {
		logger.Warn("Failed to refresh streak", "habit", habitID, "error", err)
	}
}

func notInState(err error, name, state string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("habit %q is not %s", name, state)
	}
	return err
}

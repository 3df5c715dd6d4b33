package habits

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/models"
)

type HabitCmd struct {
	Add     AddCmd     `cmd:"" help:"Add a new habit."`
	Edit    EditCmd    `cmd:"" help:"Edit a habit."`
	List    ListCmd    `cmd:"" help:"List habits."`
	Today   TodayCmd   `cmd:"" help:"Show today's habit status."`
	Log     LogCmd     `cmd:"" help:"Record progress (or a slip) on a habit."`
	Undo    UndoCmd    `cmd:"" help:"Remove the last record logged for a day."`
	Toggle  ToggleCmd  `cmd:"" help:"Mark a day done, or clear it if it already is."`
	Streak  StreakCmd  `cmd:"" help:"Show current and best streaks."`
	Heatmap HeatmapCmd `cmd:"" help:"Show a calendar heatmap of a habit."`
	Track   TrackCmd   `cmd:"" help:"Change whether a habit is built or avoided, and how slips are tracked."`
	Archive ArchiveCmd `cmd:"" help:"Archive a habit."`
	Delete  DeleteCmd  `cmd:"" help:"Delete a habit (soft delete)."`
	Restore RestoreCmd `cmd:"" help:"Restore a deleted habit."`
}

type AddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Description string `help:"Optional description." short:"d"`
	Weekly      int    `help:"Days per week the habit must be done; makes it a weekly habit." xor:"frequency"`
	Days        string `help:"Weekdays the habit is due, e.g. mon,wed,fri." xor:"frequency"`
	Target      int    `help:"Completions needed for a day to count." default:"1"`
	Avoid       bool   `help:"Track something to avoid instead of something to build."`
	Auto        bool   `help:"With --avoid, every day counts as clean unless a slip is logged."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	h := models.Habit{
		Name:          c.Name,
		Description:   c.Description,
		FrequencyType: models.FrequencyDaily,
		TargetCount:   c.Target,
		HabitType:     models.HabitTypeBuild,
		TrackingMode:  models.TrackingManual,
	}

	if err := applyFrequency(&h, c.Weekly, c.Days); err != nil {
		return err
	}

	if c.Auto && !c.Avoid {
		return fmt.Errorf("--auto requires --avoid")
	}
	if c.Avoid {
		h.HabitType = models.HabitTypeAvoid
		if c.Auto {
			h.TrackingMode = models.TrackingAutoComplete
		}
	}

	created, err := ctx.Tracker.Create(h)
	if err != nil {
		return err
	}

	ctx.Printf("Added habit: %s (%s)\n", created.Name, describe(created))
	return nil
}

// applyFrequency sets the frequency from the mutually exclusive --weekly and --days flags.
func applyFrequency(h *models.Habit, weekly int, days string) error {
	switch {
	case weekly != 0:
		h.FrequencyType = models.FrequencyWeekly
		h.FrequencyValue = weekly
		h.SpecificDays = nil
	case days != "":
		parsed, err := cli.ParseWeekdays(days)
		if err != nil {
			return err
		}
		h.FrequencyType = models.FrequencySpecificDays
		h.FrequencyValue = 0
		h.SpecificDays = parsed
	}
	return nil
}

func describe(h models.Habit) string {
	parts := []string{h.FormatFrequency()}
	if h.TargetCount > 1 {
		parts = append(parts, fmt.Sprintf("target %d", h.TargetCount))
	}
	switch {
	case h.IsSlipTracking():
		parts = append(parts, "avoid, auto-complete")
	case h.HabitType == models.HabitTypeAvoid:
		parts = append(parts, "avoid")
	}
	return strings.Join(parts, ", ")
}

type EditCmd struct {
	Habit       string  `arg:"" help:"Habit name or ID."`
	Name        *string `help:"New name."`
	Description *string `help:"New description." short:"d"`
	Daily       bool    `help:"Make the habit daily." xor:"frequency"`
	Weekly      int     `help:"Days per week the habit must be done; makes it a weekly habit." xor:"frequency"`
	Days        string  `help:"Weekdays the habit is due, e.g. mon,wed,fri." xor:"frequency"`
	Target      *int    `help:"Completions needed for a day to count."`
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit, false)
	if err != nil {
		return err
	}

	if c.Name != nil {
		h.Name = *c.Name
	}
	if c.Description != nil {
		h.Description = *c.Description
	}
	if c.Daily {
		h.FrequencyType = models.FrequencyDaily
		h.FrequencyValue = 0
		h.SpecificDays = nil
	}
	if err := applyFrequency(&h, c.Weekly, c.Days); err != nil {
		return err
	}
	if c.Target != nil {
		h.TargetCount = *c.Target
	}

	change, err := ctx.Tracker.Update(h)
	if err != nil {
		return err
	}

	ctx.Printf("Updated habit: %s (%s)\n", change.Habit.Name, describe(change.Habit))
	return nil
}

type ListCmd struct {
	Archived bool `help:"Include archived habits."`
	Deleted  bool `help:"Include deleted habits."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	all, err := ctx.Store.GetAllHabits(c.Archived, c.Deleted)
	if err != nil {
		return err
	}

	if len(all) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	for _, h := range all {
		status := ""
		if h.DeletedAt != nil {
			status = " [DELETED]"
		} else if h.ArchivedAt != nil {
			status = " [ARCHIVED]"
		}
		ctx.Printf("%-24s %s%s\n", h.Name, describe(h), status)
	}

	return nil
}

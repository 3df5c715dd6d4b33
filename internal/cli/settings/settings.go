package settings

import (
	"fmt"

	"github.com/julianstephens/habitual/internal/cli"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone    *string `help:"IANA timezone that defines calendar days (or Local)."`
	WeekStart   *string `help:"First day of the week (monday or sunday)."`
	HeatmapDays *int    `help:"Days shown by heatmaps when --days is not given."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		ctx.Println("Current Settings:")
		ctx.Printf("  Timezone:      %s\n", settings.Timezone)
		ctx.Printf("  Week Start:    %s\n", settings.WeekStart)
		ctx.Printf("  Heatmap Days:  %d\n", settings.HeatmapDays)
		return nil
	}

	updated := false
	if c.Timezone != nil {
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.WeekStart != nil {
		settings.WeekStart = *c.WeekStart
		updated = true
	}
	if c.HeatmapDays != nil {
		settings.HeatmapDays = *c.HeatmapDays
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	if err := settings.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	// Day boundaries and week buckets may have moved.
	if _, err := ctx.Tracker.RecomputeAll(); err != nil {
		return fmt.Errorf("settings saved, but recomputing streaks failed: %w", err)
	}

	ctx.Println("Settings updated successfully.")
	return nil
}

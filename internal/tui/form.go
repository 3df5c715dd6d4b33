package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/models"
)

func newHabitFormModel() *HabitFormModel {
	return &HabitFormModel{
		Frequency: models.FrequencyDaily,
		PerWeek:   "3",
		Target:    "1",
		Type:      models.HabitTypeBuild,
		Mode:      models.TrackingManual,
	}
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n < 1 {
		return fmt.Errorf("must be at least 1")
	}
	return nil
}

// NewHabitForm builds the add-habit form. Frequency details and tracking mode
// are only asked for when they apply.
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&fm.Description),
			huh.NewSelect[models.FrequencyType]().
				Title("Frequency").
				Options(
					huh.NewOption("Every day", models.FrequencyDaily),
					huh.NewOption("N days per week", models.FrequencyWeekly),
					huh.NewOption("Specific weekdays", models.FrequencySpecificDays),
				).
				Value(&fm.Frequency),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Days per week").
				Value(&fm.PerWeek).
				Validate(func(s string) error {
					if err := positiveInt(s); err != nil {
						return err
					}
					if n, _ := strconv.Atoi(strings.TrimSpace(s)); n > 7 {
						return fmt.Errorf("a week only has 7 days")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return fm.Frequency != models.FrequencyWeekly }),
		huh.NewGroup(
			huh.NewInput().
				Title("Weekdays").
				Description("e.g. mon,wed,fri").
				Value(&fm.Days).
				Validate(func(s string) error {
					_, err := cli.ParseWeekdays(s)
					return err
				}),
		).WithHideFunc(func() bool { return fm.Frequency != models.FrequencySpecificDays }),
		huh.NewGroup(
			huh.NewInput().
				Title("Completions per day").
				Value(&fm.Target).
				Validate(positiveInt),
			huh.NewSelect[models.HabitType]().
				Title("Type").
				Options(
					huh.NewOption("Build (do it)", models.HabitTypeBuild),
					huh.NewOption("Avoid (don't do it)", models.HabitTypeAvoid),
				).
				Value(&fm.Type),
		),
		huh.NewGroup(
			huh.NewSelect[models.TrackingMode]().
				Title("Tracking").
				Options(
					huh.NewOption("Manual: log the days you succeed", models.TrackingManual),
					huh.NewOption("Auto-complete: log only slips", models.TrackingAutoComplete),
				).
				Value(&fm.Mode),
		).WithHideFunc(func() bool { return fm.Type != models.HabitTypeAvoid }),
	).WithTheme(huh.ThemeDracula())
}

// Habit converts the submitted form into a new habit.
func (fm *HabitFormModel) Habit() (models.Habit, error) {
	h := models.Habit{
		Name:          strings.TrimSpace(fm.Name),
		Description:   strings.TrimSpace(fm.Description),
		FrequencyType: fm.Frequency,
		HabitType:     fm.Type,
		TrackingMode:  models.TrackingManual,
	}

	target, err := strconv.Atoi(strings.TrimSpace(fm.Target))
	if err != nil {
		return models.Habit{}, fmt.Errorf("invalid target: %w", err)
	}
	h.TargetCount = target

	switch fm.Frequency {
	case models.FrequencyWeekly:
		n, err := strconv.Atoi(strings.TrimSpace(fm.PerWeek))
		if err != nil {
			return models.Habit{}, fmt.Errorf("invalid days per week: %w", err)
		}
		h.FrequencyValue = n
	case models.FrequencySpecificDays:
		days, err := cli.ParseWeekdays(fm.Days)
		if err != nil {
			return models.Habit{}, err
		}
		h.SpecificDays = days
	}

	if fm.Type == models.HabitTypeAvoid {
		h.TrackingMode = fm.Mode
	}
	return h, nil
}

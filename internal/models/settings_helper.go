package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/utils"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingWeekStart:
			settings.WeekStart = value
		case constants.SettingHeatmapDays:
			if _, err := fmt.Sscanf(value, "%d", &settings.HeatmapDays); err != nil {
				return Settings{}, fmt.Errorf("parsing heatmap_days: %w", err)
			}
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:    settings.Timezone,
		constants.SettingWeekStart:   settings.WeekStart,
		constants.SettingHeatmapDays: fmt.Sprintf("%d", settings.HeatmapDays),
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.WeekStart == "" {
		settings.WeekStart = constants.DefaultWeekStart
	}
	if settings.HeatmapDays == 0 {
		settings.HeatmapDays = constants.DefaultHeatmapDays
	}
}

// DefaultSettings returns the settings a freshly initialized store starts with.
func DefaultSettings() Settings {
	s := Settings{}
	ApplyDefaultSettings(&s)
	return s
}

// WeekStartDay returns the configured first day of the week.
func (s Settings) WeekStartDay() time.Weekday {
	if s.WeekStart == constants.WeekStartSunday {
		return time.Sunday
	}
	return time.Monday
}

func (s Settings) Validate() error {
	if s.WeekStart != constants.WeekStartMonday && s.WeekStart != constants.WeekStartSunday {
		return fmt.Errorf("week start must be %q or %q, got %q", constants.WeekStartMonday, constants.WeekStartSunday, s.WeekStart)
	}
	if s.HeatmapDays < 1 || s.HeatmapDays > constants.MaxHeatmapDays {
		return fmt.Errorf("heatmap days must be between 1 and %d", constants.MaxHeatmapDays)
	}
	if !utils.ValidateTimezone(s.Timezone) {
		return fmt.Errorf("invalid timezone %q", s.Timezone)
	}
	return nil
}

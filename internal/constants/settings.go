package constants

const (
	SettingTimezone    = "timezone"
	SettingWeekStart   = "week_start"
	SettingHeatmapDays = "heatmap_days"

	WeekStartMonday = "monday"
	WeekStartSunday = "sunday"

	// Default Settings Values
	DefaultTimezone    = "Local" // Use system local timezone by default
	DefaultWeekStart   = WeekStartMonday
	DefaultHeatmapDays = 90
	MaxHeatmapDays     = 366
)

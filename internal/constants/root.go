package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "habitual"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/habitual/habitual.db"
	Version            = "v0.3.0"

	// EnvDBConnection overrides --config with a database path or connection string
	EnvDBConnection = "HABITUAL_DB_CONNECTION"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitual-"
	BackupFileSuffix = ".db"

	// Day is the length of a calendar day for date-only arithmetic in UTC
	Day = 24 * time.Hour
)

// Session States
const (
	StateHabits SessionState = iota
	StateAddHabit
	StateConfirmDelete
)

package constants

import "time"

const (
	AppName            = "dailyfocus"
	DefaultKeyringUser = "database-connection"
	SessionKeyringUser = "session"
	DefaultConfigDir   = "~/.config/dailyfocus"
	DefaultConfigPath  = "~/.config/dailyfocus/config.yaml"
	DefaultDBPath      = "~/.config/dailyfocus/dailyfocus.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DisplayDateFormat is the long human-readable form (Monday, January 2, 2006)
	DisplayDateFormat = "Monday, January 2, 2006"

	// MonthFormat is used to address a calendar month (YYYY-MM)
	MonthFormat = "2006-01"

	// Planner defaults
	DefaultStartHour   = 6
	DefaultEndHour     = 23
	DefaultSaveTimeout = 10 * time.Second

	// Cache defaults
	DefaultCacheTTL  = 5 * time.Minute
	CacheKeyPrefix   = "dailyfocus:note"
	DefaultTimezone  = "Local"
	EnvDBConnection  = "DAILYFOCUS_DB_CONNECTION"
	PostgresSchema   = AppName
	PostgresMaxConns = 25

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "dailyfocus-"
	BackupFileSuffix = ".db"
)

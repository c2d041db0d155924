package config

// Default paths for on-disk state
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./readlater.db"

	// DefaultMediaDir holds per-entry downloaded pictures
	DefaultMediaDir = "./media"

	// DefaultCacheDir holds advisory cache files such as the latest version string
	DefaultCacheDir = "./cache"

	// DefaultAuditDir keeps a copy of every uploaded import file
	DefaultAuditDir = "./audit"
)

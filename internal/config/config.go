package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // Every request acts as DefaultUserID (default)
	AuthModeToken AuthMode = "token" // Bearer API token looked up in the users table
)

type (
	Config struct {
		HTTP
		Global
		Database
		Fetcher
		Pictures
		Import
		Dedupe
		Cache
		Tasks
		Maintenance
		Auth
		Audit
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Fetcher struct {
		Endpoint      string        // Full-text extraction endpoint (makefulltextfeed compatible)
		Timeout       time.Duration // Upper bound for a single extraction call
		RatePerSecond float64       // 0 disables pacing
		Burst         int
	}
	Pictures struct {
		Download bool   // Localise <img> sources after an add
		MediaDir string // Root for per-entry picture directories
	}
	Import struct {
		// DetectDuplicates makes bulk adds perform the same pre-insert duplicate
		// lookup as interactive adds. Off by default: imported duplicates are
		// only resolved by a later interactive re-add.
		DetectDuplicates bool
		MaxFileSize      int64
	}
	Dedupe struct {
		// Serialize guards the lookup-insert-delete sequence with a per-(owner,url) lock.
		Serialize bool
	}
	Cache struct {
		Dir        string
		VersionURL string
		MaxAge     time.Duration
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Maintenance struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Auth struct {
		Mode            AuthMode
		SessionLifetime time.Duration
		SecureCookies   bool
	}
	Audit struct {
		RetentionDays int
		Dir           string // archived import files
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Content fetcher defaults
	v.SetDefault("fetcher_endpoint", "http://localhost:8188/inc/3rdparty/makefulltextfeed.php")
	v.SetDefault("fetcher_timeout", "30s")
	v.SetDefault("fetcher_rate_per_second", 2.0)
	v.SetDefault("fetcher_burst", 4)

	v.SetDefault("download_pictures", false)
	v.SetDefault("media_dir", DefaultMediaDir)

	v.SetDefault("import_detect_duplicates", false)
	v.SetDefault("import_max_file_size", 32<<20) // 32 MiB
	v.SetDefault("dedupe_serialize", false)

	v.SetDefault("cache_dir", DefaultCacheDir)
	v.SetDefault("version_url", "http://static.wallabag.org/versions")
	v.SetDefault("cache_max_age", "24h")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("maintenance_enabled", true)
	v.SetDefault("maintenance_schedule", "0 3 * * *")

	v.SetDefault("auth_mode", "none")
	v.SetDefault("session_lifetime", "24h")
	v.SetDefault("auth_secure_cookies", false)

	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_dir", DefaultAuditDir)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Fetcher: Fetcher{
			Endpoint:      v.GetString("FETCHER_ENDPOINT"),
			Timeout:       v.GetDuration("FETCHER_TIMEOUT"),
			RatePerSecond: v.GetFloat64("FETCHER_RATE_PER_SECOND"),
			Burst:         v.GetInt("FETCHER_BURST"),
		},
		Pictures: Pictures{
			Download: v.GetBool("DOWNLOAD_PICTURES"),
			MediaDir: v.GetString("MEDIA_DIR"),
		},
		Import: Import{
			DetectDuplicates: v.GetBool("IMPORT_DETECT_DUPLICATES"),
			MaxFileSize:      v.GetInt64("IMPORT_MAX_FILE_SIZE"),
		},
		Dedupe: Dedupe{
			Serialize: v.GetBool("DEDUPE_SERIALIZE"),
		},
		Cache: Cache{
			Dir:        v.GetString("CACHE_DIR"),
			VersionURL: v.GetString("VERSION_URL"),
			MaxAge:     v.GetDuration("CACHE_MAX_AGE"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Maintenance: Maintenance{
			Enabled:  v.GetBool("MAINTENANCE_ENABLED"),
			Schedule: v.GetString("MAINTENANCE_SCHEDULE"),
		},
		Auth: Auth{
			Mode:            AuthMode(v.GetString("AUTH_MODE")),
			SessionLifetime: v.GetDuration("SESSION_LIFETIME"),
			SecureCookies:   v.GetBool("AUTH_SECURE_COOKIES"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
			Dir:           v.GetString("AUDIT_DIR"),
		},
	}
}

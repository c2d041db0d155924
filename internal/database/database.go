package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/readlater/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the sqlite database at dbPath and migrates the schema.
func NewDatabase(dbPath string) (*Database, error) {
	return open(dbPath, logger.Info)
}

// NewQuietDatabase is NewDatabase without SQL statement logging.
func NewQuietDatabase(dbPath string) (*Database, error) {
	return open(dbPath, logger.Silent)
}

func open(dbPath string, level logger.LogLevel) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(withPragmas(dbPath)), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

// Migrate creates or updates every table the application uses.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&entities.Entry{}, "Tags", &entities.EntryTag{}); err != nil {
		return fmt.Errorf("failed to set up entry tags: %w", err)
	}

	err := db.AutoMigrate(
		&entities.User{},
		&entities.Entry{},
		&entities.Tag{},
		&entities.EntryTag{},
		&entities.ImportSession{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// withPragmas turns on foreign keys and a busy timeout for file databases.
func withPragmas(dbPath string) string {
	if strings.Contains(dbPath, "?") || strings.HasPrefix(dbPath, ":memory:") {
		return dbPath
	}
	return dbPath + "?_foreign_keys=on&_busy_timeout=5000"
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping is used by the health endpoint.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) CreateImportSession(userID uint, provider string) (*entities.ImportSession, error) {
	session := &entities.ImportSession{
		UserID:    userID,
		Provider:  provider,
		Status:    entities.ImportStatusRunning,
		StartedAt: time.Now(),
	}
	if err := d.DB.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (d *Database) UpdateImportSession(session *entities.ImportSession) error {
	return d.DB.Save(session).Error
}

func (d *Database) GetImportSessionsForUser(userID uint) ([]entities.ImportSession, error) {
	var sessions []entities.ImportSession
	err := d.DB.Where("user_id = ?", userID).Order("started_at DESC").Find(&sessions).Error
	return sessions, err
}

func (d *Database) GetStatsForUser(userID uint) (total int64, unread int64, err error) {
	err = d.DB.Model(&entities.Entry{}).Where("user_id = ?", userID).Count(&total).Error
	if err != nil {
		return
	}
	err = d.DB.Model(&entities.Entry{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&unread).Error
	return
}

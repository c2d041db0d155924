package entities

import "time"

// UntitledPlaceholder is stored when the extractor returns no title.
const UntitledPlaceholder = "Untitled"

type ImportStatus string

const (
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:100" json:"username"`
	Token     string    `gorm:"uniqueIndex;size:64" json:"-"` // API token, hidden from JSON
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entry is one saved article. IsRead doubles as the archived state.
type Entry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;index:idx_entries_user_url,priority:1" json:"user_id"`
	URL        string    `gorm:"size:2048;index:idx_entries_user_url,priority:2" json:"url"`
	Title      string    `gorm:"size:512" json:"title"`
	Content    string    `gorm:"type:text" json:"content"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	IsFavorite bool      `gorm:"default:false" json:"is_fav"`
	Tags       []Tag     `gorm:"many2many:entries_tags;" json:"tags,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Tag values are global, not per user.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Value     string    `gorm:"uniqueIndex;size:255" json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// EntryTag is the association row behind Entry.Tags.
type EntryTag struct {
	EntryID uint `gorm:"primaryKey"`
	TagID   uint `gorm:"primaryKey"`
}

type ImportSession struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	UserID      uint         `gorm:"index" json:"user_id"`
	Provider    string       `gorm:"size:30" json:"provider"`
	Status      ImportStatus `gorm:"size:20;default:'running'" json:"status"`
	ItemsSeen   int          `json:"items_seen"`
	Imported    int          `json:"imported"`
	Skipped     int          `json:"skipped"`
	Errors      string       `gorm:"type:text" json:"errors,omitempty"` // newline separated
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (Entry) TableName() string {
	return "entries"
}

func (Tag) TableName() string {
	return "tags"
}

func (EntryTag) TableName() string {
	return "entries_tags"
}

func (ImportSession) TableName() string {
	return "import_sessions"
}

// Package tags provides database operations for tag management.
//
// Tag values are global and unique; entries reference them through the
// entries_tags association table.
//
// # Interface Implementation
//
//	var _ actions.TagStore = (*Repository)(nil)
//
// # Usage
//
//	repo := tags.NewRepository(db)
//	tag, err := repo.GetOrCreateTag(ctx, "golang")
package tags

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/readlater/internal/entities"
)

var ErrEmptyValue = errors.New("tag value is empty")

// Repository handles all tag database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new tags repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateTag inserts a tag. It fails if the value already exists.
func (r *Repository) CreateTag(ctx context.Context, value string) (*entities.Tag, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrEmptyValue
	}
	tag := &entities.Tag{Value: value}
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return nil, err
	}
	return tag, nil
}

// RetrieveTagByValue returns the tag with exactly this value, or nil.
func (r *Repository) RetrieveTagByValue(ctx context.Context, value string) (*entities.Tag, error) {
	var tag entities.Tag
	err := r.db.WithContext(ctx).Where("value = ?", strings.TrimSpace(value)).First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetOrCreateTag returns the tag for value, inserting it first if needed.
// Concurrent callers with the same value end up with the same row.
func (r *Repository) GetOrCreateTag(ctx context.Context, value string) (*entities.Tag, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrEmptyValue
	}

	var tag entities.Tag
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		candidate := entities.Tag{Value: value}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "value"}},
			DoNothing: true,
		}).Create(&candidate).Error; err != nil {
			return err
		}
		return tx.Where("value = ?", value).First(&tag).Error
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetTagByID retrieves a tag by ID.
func (r *Repository) GetTagByID(ctx context.Context, id uint) (*entities.Tag, error) {
	var tag entities.Tag
	err := r.db.WithContext(ctx).First(&tag, id).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// SetTagToEntry links a tag to an entry. Linking twice is a no-op.
func (r *Repository) SetTagToEntry(ctx context.Context, tagID, entryID uint) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entities.EntryTag{EntryID: entryID, TagID: tagID}).Error
}

// RemoveTagForEntry unlinks a tag from an entry and returns the rows removed.
func (r *Repository) RemoveTagForEntry(ctx context.Context, entryID, tagID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("entry_id = ? AND tag_id = ?", entryID, tagID).
		Delete(&entities.EntryTag{})
	return result.RowsAffected, result.Error
}

// ListTagsForEntry returns the tags linked to an entry, sorted by value.
func (r *Repository) ListTagsForEntry(ctx context.Context, entryID uint) ([]entities.Tag, error) {
	var tags []entities.Tag
	err := r.db.WithContext(ctx).
		Joins("JOIN entries_tags ON entries_tags.tag_id = tags.id").
		Where("entries_tags.entry_id = ?", entryID).
		Order("tags.value ASC").
		Find(&tags).Error
	return tags, err
}

// ListTagsForUser returns the distinct tags used on any of the owner's entries.
func (r *Repository) ListTagsForUser(ctx context.Context, ownerID uint) ([]entities.Tag, error) {
	var tags []entities.Tag
	err := r.db.WithContext(ctx).
		Distinct("tags.*").
		Joins("JOIN entries_tags ON entries_tags.tag_id = tags.id").
		Joins("JOIN entries ON entries.id = entries_tags.entry_id").
		Where("entries.user_id = ?", ownerID).
		Order("tags.value ASC").
		Find(&tags).Error
	return tags, err
}

// DeleteOrphanTags removes tags that no entry references any more.
func (r *Repository) DeleteOrphanTags(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM tags
		WHERE id NOT IN (SELECT tag_id FROM entries_tags)
	`)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

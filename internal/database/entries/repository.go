// Package entries provides database operations for saved entries.
//
// Every read and mutation is scoped by owner. An id that exists but belongs
// to someone else behaves exactly like an id that does not exist.
//
// # Usage
//
//	repo := entries.NewRepository(db)
//	id, err := repo.Add(ctx, url, title, content, userID)
package entries

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/readlater/internal/entities"
)

// View selects which listing an owner is looking at.
type View string

const (
	ViewHome    View = "home"    // unread entries
	ViewFavs    View = "fav"     // favorite entries, read or not
	ViewArchive View = "archive" // read entries
)

// ParseView maps an empty or unknown value to ViewHome.
func ParseView(s string) View {
	switch View(s) {
	case ViewFavs, ViewArchive:
		return View(s)
	default:
		return ViewHome
	}
}

// Repository handles all entry database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new entries repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add inserts a new unread, non-favorite entry and returns its id.
func (r *Repository) Add(ctx context.Context, url, title, content string, ownerID uint) (uint, error) {
	entry := &entities.Entry{
		UserID:  ownerID,
		URL:     url,
		Title:   title,
		Content: content,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return 0, fmt.Errorf("failed to insert entry: %w", err)
	}
	return entry.ID, nil
}

// RetrieveOneByURL returns the oldest entry the owner saved with this exact
// url, or nil when there is none.
func (r *Repository) RetrieveOneByURL(ctx context.Context, url string, ownerID uint) (*entities.Entry, error) {
	var entry entities.Entry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND url = ?", ownerID, url).
		Order("id ASC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// RetrieveOneByID returns the entry with its tags, or nil when the owner has
// no entry with that id.
func (r *Repository) RetrieveOneByID(ctx context.Context, id, ownerID uint) (*entities.Entry, error) {
	var entry entities.Entry
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteByID removes the entry and its tag associations. It reports false
// without an error when the owner has no such entry.
func (r *Repository) DeleteByID(ctx context.Context, id, ownerID uint) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Entry{}).Where("id = ? AND user_id = ?", id, ownerID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		if err := tx.Where("entry_id = ?", id).Delete(&entities.EntryTag{}).Error; err != nil {
			return fmt.Errorf("failed to delete tag associations: %w", err)
		}
		result := tx.Where("id = ? AND user_id = ?", id, ownerID).Delete(&entities.Entry{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// FavoriteByID flips the favorite flag and returns the number of rows touched.
func (r *Repository) FavoriteByID(ctx context.Context, id, ownerID uint) (int64, error) {
	return r.toggle(ctx, "is_favorite", id, ownerID)
}

// ArchiveByID flips the read flag and returns the number of rows touched.
func (r *Repository) ArchiveByID(ctx context.Context, id, ownerID uint) (int64, error) {
	return r.toggle(ctx, "is_read", id, ownerID)
}

func (r *Repository) toggle(ctx context.Context, column string, id, ownerID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Entry{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update(column, gorm.Expr("NOT "+column))
	return result.RowsAffected, result.Error
}

// ArchiveAll marks every unread entry of the owner as read.
func (r *Repository) ArchiveAll(ctx context.Context, ownerID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Entry{}).
		Where("user_id = ? AND is_read = ?", ownerID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// ReassignTags moves every tag association of oldID onto newID. Pairs that
// newID already has are dropped rather than duplicated.
func (r *Repository) ReassignTags(ctx context.Context, oldID, newID uint) (int64, error) {
	var moved int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(
			`INSERT INTO entries_tags (entry_id, tag_id)
			 SELECT ?, tag_id FROM entries_tags
			 WHERE entry_id = ? AND tag_id NOT IN (SELECT tag_id FROM entries_tags WHERE entry_id = ?)`,
			newID, oldID, newID,
		)
		if result.Error != nil {
			return result.Error
		}
		moved = result.RowsAffected
		return tx.Where("entry_id = ?", oldID).Delete(&entities.EntryTag{}).Error
	})
	return moved, err
}

// UpdateContent replaces the stored body, used after pictures are localized.
func (r *Repository) UpdateContent(ctx context.Context, id uint, content string, ownerID uint) error {
	return r.db.WithContext(ctx).
		Model(&entities.Entry{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("content", content).Error
}

// LastInsertedID returns the highest entry id the owner has, 0 if none.
func (r *Repository) LastInsertedID(ctx context.Context, ownerID uint) (uint, error) {
	var id *uint
	err := r.db.WithContext(ctx).
		Model(&entities.Entry{}).
		Where("user_id = ?", ownerID).
		Select("MAX(id)").
		Scan(&id).Error
	if err != nil || id == nil {
		return 0, err
	}
	return *id, nil
}

// ListByView returns the owner's entries for a listing, newest first.
func (r *Repository) ListByView(ctx context.Context, ownerID uint, view View) ([]entities.Entry, error) {
	query := r.db.WithContext(ctx).Preload("Tags").Where("user_id = ?", ownerID)
	switch view {
	case ViewFavs:
		query = query.Where("is_favorite = ?", true)
	case ViewArchive:
		query = query.Where("is_read = ?", true)
	default:
		query = query.Where("is_read = ?", false)
	}

	var result []entities.Entry
	err := query.Order("id DESC").Find(&result).Error
	return result, err
}

// ListByTag returns the owner's entries carrying tagID, newest first.
func (r *Repository) ListByTag(ctx context.Context, ownerID, tagID uint) ([]entities.Entry, error) {
	var result []entities.Entry
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Joins("JOIN entries_tags ON entries_tags.entry_id = entries.id").
		Where("entries.user_id = ? AND entries_tags.tag_id = ?", ownerID, tagID).
		Order("entries.id DESC").
		Find(&result).Error
	return result, err
}

// RetrieveAll returns every entry of the owner in insertion order.
func (r *Repository) RetrieveAll(ctx context.Context, ownerID uint) ([]entities.Entry, error) {
	var result []entities.Entry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("id ASC").
		Find(&result).Error
	return result, err
}


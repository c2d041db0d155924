// Package actions is the single entry point for every mutation of a user's
// saved entries. Interactive requests and importers both go through
// Dispatcher.Dispatch, so they share the same invariants.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/mrlokans/readlater/internal/entities"
	"github.com/mrlokans/readlater/internal/fetcher"
	"github.com/mrlokans/readlater/internal/messages"
)

var (
	ErrUnknownVerb   = errors.New("unknown action")
	ErrInvalidURL    = errors.New("invalid url")
	ErrInsertFailed  = errors.New("entry insert failed")
	ErrEntryNotFound = errors.New("entry not found")
	ErrStorage       = errors.New("storage failure")
)

// User visible notices.
const (
	MsgAdded         = "the link has been added successfully"
	MsgAddedNoText   = "the link has been added, but its content could not be fetched"
	MsgInsertFailed  = "error during insertion : the link wasn't added"
	MsgInvalidURL    = "the link is not valid"
	MsgNotFound      = "Article not found!"
	MsgDeleted       = "the link has been deleted successfully"
	MsgDeleteFailed  = "error during deletion : the link wasn't deleted"
	MsgFavToggled    = "the favorite status has been updated"
	MsgArchToggled   = "the read status has been updated"
	MsgArchivedAll   = "all links have been marked as read"
	MsgTagsAdded     = "the tags have been added"
	MsgTagRemoved    = "the tag has been removed"
	MsgNoTagValue    = "no tag value given"
	MsgUpdateFailed  = "error during update : nothing was changed"
	MsgUnknownAction = "unknown action"
)

// EntryStore is the owner scoped entry storage the dispatcher mutates.
// Lookups return a nil entry without error when nothing matches.
type EntryStore interface {
	Add(ctx context.Context, url, title, content string, ownerID uint) (uint, error)
	RetrieveOneByURL(ctx context.Context, url string, ownerID uint) (*entities.Entry, error)
	RetrieveOneByID(ctx context.Context, id, ownerID uint) (*entities.Entry, error)
	DeleteByID(ctx context.Context, id, ownerID uint) (bool, error)
	FavoriteByID(ctx context.Context, id, ownerID uint) (int64, error)
	ArchiveByID(ctx context.Context, id, ownerID uint) (int64, error)
	ArchiveAll(ctx context.Context, ownerID uint) (int64, error)
	ReassignTags(ctx context.Context, oldID, newID uint) (int64, error)
	UpdateContent(ctx context.Context, id uint, content string, ownerID uint) error
}

type TagStore interface {
	GetOrCreateTag(ctx context.Context, value string) (*entities.Tag, error)
	SetTagToEntry(ctx context.Context, tagID, entryID uint) error
	RemoveTagForEntry(ctx context.Context, entryID, tagID uint) (int64, error)
}

type ContentFetcher interface {
	Fetch(ctx context.Context, pageURL string, creds *fetcher.Credentials) (fetcher.Content, error)
}

// PictureStore localizes images of a freshly added entry and drops them
// again when the entry goes away.
type PictureStore interface {
	Localize(ctx context.Context, entryID uint, pageURL, body string) (string, error)
	RemoveEntry(entryID uint) error
}

type Auditor interface {
	LogAdd(userID, entryID uint, url string, replacedID uint)
	LogDelete(userID, entryID uint)
}

type Options struct {
	Pictures PictureStore   // nil disables picture download
	Messages messages.Queue // nil drops interactive messages
	Audit    Auditor        // nil disables audit events

	// DetectImportDuplicates makes bulk adds look for a duplicate candidate
	// too. Off by default.
	DetectImportDuplicates bool

	// SerializeDedupe holds a per (owner, url) lock around the add sequence so
	// two concurrent adds of the same link cannot both survive.
	SerializeDedupe bool
}

type Dispatcher struct {
	entries EntryStore
	tags    TagStore
	fetcher ContentFetcher
	opts    Options
	locks   *keyedMutex
}

func NewDispatcher(entries EntryStore, tags TagStore, fetcher ContentFetcher, opts Options) *Dispatcher {
	return &Dispatcher{
		entries: entries,
		tags:    tags,
		fetcher: fetcher,
		opts:    opts,
		locks:   newKeyedMutex(),
	}
}

// Dispatch runs one verb. The returned Outcome always carries exactly one
// message; it has been queued unless the request is bulk. A non-nil error
// means the verb did not do what was asked.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Outcome, error) {
	var (
		out Outcome
		err error
	)

	switch req.Verb {
	case VerbAdd:
		out, err = d.add(ctx, req)
	case VerbDelete:
		out, err = d.delete(ctx, req)
	case VerbToggleFavorite:
		out, err = d.toggle(ctx, req, d.entries.FavoriteByID, MsgFavToggled)
	case VerbToggleArchive:
		out, err = d.toggle(ctx, req, d.entries.ArchiveByID, MsgArchToggled)
	case VerbArchiveAll:
		out, err = d.archiveAll(ctx, req)
	case VerbAddTag:
		out, err = d.addTag(ctx, req)
	case VerbRemoveTag:
		out, err = d.removeTag(ctx, req)
	default:
		out = Outcome{Message: messages.Error(MsgUnknownAction)}
		err = fmt.Errorf("%w: %q", ErrUnknownVerb, req.Verb)
	}

	out.Verb = req.Verb
	if !req.Bulk && d.opts.Messages != nil {
		d.opts.Messages.Add(ctx, out.Message)
	}
	return out, err
}

func (d *Dispatcher) add(ctx context.Context, req Request) (Outcome, error) {
	if !ValidURL(req.URL) {
		return Outcome{Message: messages.Error(MsgInvalidURL)}, fmt.Errorf("%w: %q", ErrInvalidURL, req.URL)
	}

	if d.opts.SerializeDedupe {
		unlock := d.locks.Lock(strconv.FormatUint(uint64(req.OwnerID), 10) + "|" + req.URL)
		defer unlock()
	}

	degraded := false
	content, err := d.fetcher.Fetch(ctx, req.URL, req.Credentials)
	if err != nil {
		log.Printf("Fetching %s failed, saving without content: %v", req.URL, err)
		content = fetcher.Content{Title: entities.UntitledPlaceholder}
		degraded = true
	}

	var duplicate *entities.Entry
	if !req.Bulk || d.opts.DetectImportDuplicates {
		duplicate, err = d.entries.RetrieveOneByURL(ctx, req.URL, req.OwnerID)
		if err != nil {
			log.Printf("Duplicate lookup for %s failed, adding without dedupe: %v", req.URL, err)
			duplicate = nil
		}
	}

	id, err := d.entries.Add(ctx, req.URL, content.Title, content.Body, req.OwnerID)
	if err != nil {
		log.Printf("Failed to insert entry for %s: %v", req.URL, err)
		return Outcome{Message: messages.Error(MsgInsertFailed)}, fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	if d.opts.Pictures != nil && content.Body != "" {
		d.localizePictures(ctx, id, req)
	}

	out := Outcome{EntryID: id, Affected: 1, Message: messages.Success(MsgAdded)}
	if degraded {
		out.Message = messages.Warning(MsgAddedNoText)
	}

	if duplicate != nil {
		out.Favorite = d.supersede(ctx, duplicate, id, req.OwnerID)
		out.Replaced = duplicate.ID
	}

	if d.opts.Audit != nil {
		d.opts.Audit.LogAdd(req.OwnerID, id, req.URL, out.Replaced)
	}
	return out, nil
}

// supersede moves the curation of an older copy of the same link onto the
// new entry and removes the old one. Failures are logged; the new entry
// stays either way. It reports whether the new entry ended up favorite.
func (d *Dispatcher) supersede(ctx context.Context, old *entities.Entry, newID, ownerID uint) (favorite bool) {
	if _, err := d.entries.ReassignTags(ctx, old.ID, newID); err != nil {
		log.Printf("Failed to move tags from entry %d to %d: %v", old.ID, newID, err)
	}

	if old.IsFavorite {
		if affected, err := d.entries.FavoriteByID(ctx, newID, ownerID); err != nil {
			log.Printf("Failed to carry favorite from entry %d to %d: %v", old.ID, newID, err)
		} else {
			favorite = affected > 0
		}
	}

	deleted, err := d.entries.DeleteByID(ctx, old.ID, ownerID)
	if err != nil {
		log.Printf("Failed to delete superseded entry %d: %v", old.ID, err)
		return favorite
	}
	if !deleted {
		log.Printf("Superseded entry %d was already gone", old.ID)
		return favorite
	}
	d.removePictures(old.ID)
	return favorite
}

func (d *Dispatcher) localizePictures(ctx context.Context, id uint, req Request) {
	entry, err := d.entries.RetrieveOneByID(ctx, id, req.OwnerID)
	if err != nil || entry == nil {
		return
	}
	body, err := d.opts.Pictures.Localize(ctx, id, req.URL, entry.Content)
	if err != nil {
		log.Printf("Failed to localize pictures of entry %d: %v", id, err)
		return
	}
	if body == entry.Content {
		return
	}
	if err := d.entries.UpdateContent(ctx, id, body, req.OwnerID); err != nil {
		log.Printf("Failed to store localized body of entry %d: %v", id, err)
	}
}

func (d *Dispatcher) removePictures(id uint) {
	if d.opts.Pictures == nil {
		return
	}
	if err := d.opts.Pictures.RemoveEntry(id); err != nil {
		log.Printf("Failed to remove pictures of entry %d: %v", id, err)
	}
}

func (d *Dispatcher) delete(ctx context.Context, req Request) (Outcome, error) {
	deleted, err := d.entries.DeleteByID(ctx, req.EntryID, req.OwnerID)
	if err != nil {
		log.Printf("Failed to delete entry %d: %v", req.EntryID, err)
		return Outcome{EntryID: req.EntryID, Message: messages.Error(MsgDeleteFailed)}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	out := Outcome{EntryID: req.EntryID, Message: messages.Success(MsgDeleted)}
	if deleted {
		out.Affected = 1
		d.removePictures(req.EntryID)
		if d.opts.Audit != nil {
			d.opts.Audit.LogDelete(req.OwnerID, req.EntryID)
		}
	}
	return out, nil
}

type toggleFunc func(ctx context.Context, id, ownerID uint) (int64, error)

func (d *Dispatcher) toggle(ctx context.Context, req Request, flip toggleFunc, okText string) (Outcome, error) {
	affected, err := flip(ctx, req.EntryID, req.OwnerID)
	if err != nil {
		log.Printf("Failed to run %s on entry %d: %v", req.Verb, req.EntryID, err)
		return Outcome{EntryID: req.EntryID, Message: messages.Error(MsgUpdateFailed)}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return Outcome{EntryID: req.EntryID, Affected: affected, Message: messages.Success(okText)}, nil
}

func (d *Dispatcher) archiveAll(ctx context.Context, req Request) (Outcome, error) {
	affected, err := d.entries.ArchiveAll(ctx, req.OwnerID)
	if err != nil {
		log.Printf("Failed to archive all entries of user %d: %v", req.OwnerID, err)
		return Outcome{Affected: affected, Message: messages.Error(MsgUpdateFailed)}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return Outcome{Affected: affected, Message: messages.Success(MsgArchivedAll)}, nil
}

// requireEntry reports a distinct not-found outcome for entry scoped verbs.
func (d *Dispatcher) requireEntry(ctx context.Context, req Request) (Outcome, bool, error) {
	entry, err := d.entries.RetrieveOneByID(ctx, req.EntryID, req.OwnerID)
	if err != nil {
		log.Printf("Failed to look up entry %d: %v", req.EntryID, err)
		return Outcome{EntryID: req.EntryID, Message: messages.Error(MsgUpdateFailed)}, false, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if entry == nil {
		return Outcome{EntryID: req.EntryID, Message: messages.Error(MsgNotFound)}, false, fmt.Errorf("%w: %d", ErrEntryNotFound, req.EntryID)
	}
	return Outcome{}, true, nil
}

func (d *Dispatcher) addTag(ctx context.Context, req Request) (Outcome, error) {
	if out, ok, err := d.requireEntry(ctx, req); !ok {
		return out, err
	}

	values := splitTagValues(req.TagValues)
	if len(values) == 0 {
		return Outcome{EntryID: req.EntryID, Message: messages.Info(MsgNoTagValue)}, nil
	}

	out := Outcome{EntryID: req.EntryID, Message: messages.Success(MsgTagsAdded)}
	for _, value := range values {
		tag, err := d.tags.GetOrCreateTag(ctx, value)
		if err != nil {
			log.Printf("Failed to get or create tag %q: %v", value, err)
			out.Message = messages.Warning(MsgTagsAdded + ", some could not be saved")
			continue
		}
		if err := d.tags.SetTagToEntry(ctx, tag.ID, req.EntryID); err != nil {
			log.Printf("Failed to tag entry %d with %q: %v", req.EntryID, value, err)
			out.Message = messages.Warning(MsgTagsAdded + ", some could not be saved")
			continue
		}
		out.Affected++
	}
	return out, nil
}

func (d *Dispatcher) removeTag(ctx context.Context, req Request) (Outcome, error) {
	if out, ok, err := d.requireEntry(ctx, req); !ok {
		return out, err
	}

	removed, err := d.tags.RemoveTagForEntry(ctx, req.EntryID, req.TagID)
	if err != nil {
		log.Printf("Failed to untag entry %d: %v", req.EntryID, err)
		return Outcome{EntryID: req.EntryID, Message: messages.Error(MsgUpdateFailed)}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return Outcome{EntryID: req.EntryID, Affected: removed, Message: messages.Success(MsgTagRemoved)}, nil
}

// ValidURL accepts absolute http and https URLs with a host.
func ValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

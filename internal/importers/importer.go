package importers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/mrlokans/readlater/internal/actions"
	"github.com/mrlokans/readlater/internal/entities"
	"github.com/mrlokans/readlater/internal/fetcher"
	"github.com/mrlokans/readlater/internal/messages"
)

const maxRecordedErrors = 20

// Dispatcher runs entry verbs; satisfied by *actions.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, req actions.Request) (actions.Outcome, error)
}

// SessionStore records import runs.
type SessionStore interface {
	CreateImportSession(userID uint, provider string) (*entities.ImportSession, error)
	UpdateImportSession(session *entities.ImportSession) error
}

type Auditor interface {
	LogImport(userID uint, provider, description string, imported, skipped int, err error)
}

// Result summarizes one import run.
type Result struct {
	Provider  Provider         `json:"provider"`
	SessionID uint             `json:"session_id,omitempty"`
	Seen      int              `json:"seen"`
	Imported  int              `json:"imported"`
	Skipped   int              `json:"skipped"`
	Message   messages.Message `json:"message"`
}

type Importer struct {
	dispatcher Dispatcher
	sessions   SessionStore
	audit      Auditor
	messages   messages.Queue
}

// NewImporter wires an importer. sessions, audit and queue may be nil.
func NewImporter(dispatcher Dispatcher, sessions SessionStore, audit Auditor, queue messages.Queue) *Importer {
	return &Importer{
		dispatcher: dispatcher,
		sessions:   sessions,
		audit:      audit,
		messages:   queue,
	}
}

// Import reads r in the provider's format and saves every link for ownerID.
// Items that cannot be saved are skipped; the run only fails as a whole
// when the file cannot be parsed at all or ctx is cancelled.
func (im *Importer) Import(ctx context.Context, provider Provider, r io.Reader, ownerID uint, creds *fetcher.Credentials) (Result, error) {
	result := Result{Provider: provider}

	normalize, err := provider.Normalizer()
	if err != nil {
		result.Message = messages.Error("Unknown import provider.")
		im.notify(ctx, result.Message)
		return result, err
	}

	items, err := normalize(r)
	if err != nil {
		result.Message = messages.Error(fmt.Sprintf("import from %s failed: the file could not be read.", provider))
		im.notify(ctx, result.Message)
		im.logAudit(ownerID, result, err)
		return result, err
	}

	session := im.startSession(ownerID, provider)
	if session != nil {
		result.SessionID = session.ID
	}

	var itemErrors []string
	var runErr error
	for item := range items {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		result.Seen++

		if !actions.ValidURL(item.URL) {
			result.Skipped++
			continue
		}

		if err := im.importItem(ctx, item, ownerID, creds); err != nil {
			result.Skipped++
			if len(itemErrors) < maxRecordedErrors {
				itemErrors = append(itemErrors, fmt.Sprintf("%s: %v", item.URL, err))
			}
			continue
		}
		result.Imported++
	}

	if runErr != nil {
		result.Message = messages.Warning(fmt.Sprintf("import from %s interrupted. %d new links.", provider, result.Imported))
	} else {
		result.Message = messages.Success(fmt.Sprintf("import from %s completed. %d new links.", provider, result.Imported))
	}

	im.finishSession(session, result, itemErrors, runErr)
	im.logAudit(ownerID, result, runErr)
	im.notify(ctx, result.Message)

	log.Printf("Import from %s for user %d: %d seen, %d imported, %d skipped",
		provider, ownerID, result.Seen, result.Imported, result.Skipped)

	return result, runErr
}

// importItem adds the link and then replays its flags with the toggle verbs.
// An added entry always starts unread; it may already be favorite when it
// superseded a favorite duplicate, and is then left as is.
func (im *Importer) importItem(ctx context.Context, item Item, ownerID uint, creds *fetcher.Credentials) error {
	out, err := im.dispatcher.Dispatch(ctx, actions.Request{
		Verb:        actions.VerbAdd,
		URL:         item.URL,
		OwnerID:     ownerID,
		Bulk:        true,
		Credentials: creds,
	})
	if err != nil {
		return err
	}

	var flagErrs []error
	if item.Favorite && !out.Favorite {
		if _, err := im.dispatcher.Dispatch(ctx, actions.Request{Verb: actions.VerbToggleFavorite, EntryID: out.EntryID, OwnerID: ownerID, Bulk: true}); err != nil {
			flagErrs = append(flagErrs, err)
		}
	}
	if item.Archived {
		if _, err := im.dispatcher.Dispatch(ctx, actions.Request{Verb: actions.VerbToggleArchive, EntryID: out.EntryID, OwnerID: ownerID, Bulk: true}); err != nil {
			flagErrs = append(flagErrs, err)
		}
	}
	if len(flagErrs) > 0 {
		// The entry is saved; only its flags are off.
		log.Printf("Imported %s without all of its flags: %v", item.URL, errors.Join(flagErrs...))
	}
	return nil
}

func (im *Importer) startSession(ownerID uint, provider Provider) *entities.ImportSession {
	if im.sessions == nil {
		return nil
	}
	session, err := im.sessions.CreateImportSession(ownerID, string(provider))
	if err != nil {
		log.Printf("Failed to record import session: %v", err)
		return nil
	}
	return session
}

func (im *Importer) finishSession(session *entities.ImportSession, result Result, itemErrors []string, runErr error) {
	if session == nil {
		return
	}
	now := time.Now()
	session.CompletedAt = &now
	session.ItemsSeen = result.Seen
	session.Imported = result.Imported
	session.Skipped = result.Skipped
	session.Errors = strings.Join(itemErrors, "\n")
	session.Status = entities.ImportStatusCompleted
	if runErr != nil {
		session.Status = entities.ImportStatusFailed
	}
	if err := im.sessions.UpdateImportSession(session); err != nil {
		log.Printf("Failed to update import session %d: %v", session.ID, err)
	}
}

func (im *Importer) logAudit(ownerID uint, result Result, err error) {
	if im.audit == nil {
		return
	}
	im.audit.LogImport(ownerID, string(result.Provider), result.Message.Text, result.Imported, result.Skipped, err)
}

func (im *Importer) notify(ctx context.Context, msg messages.Message) {
	if im.messages != nil {
		im.messages.Add(ctx, msg)
	}
}

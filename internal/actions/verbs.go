package actions

import (
	"fmt"
	"strings"

	"github.com/mrlokans/readlater/internal/fetcher"
	"github.com/mrlokans/readlater/internal/messages"
)

// Verb names one mutation of the entry set. The set is closed.
type Verb string

const (
	VerbAdd            Verb = "add"
	VerbDelete         Verb = "delete"
	VerbToggleFavorite Verb = "toggle_fav"
	VerbToggleArchive  Verb = "toggle_archive"
	VerbArchiveAll     Verb = "archive_all"
	VerbAddTag         Verb = "add_tag"
	VerbRemoveTag      Verb = "remove_tag"
)

var verbs = []Verb{
	VerbAdd,
	VerbDelete,
	VerbToggleFavorite,
	VerbToggleArchive,
	VerbArchiveAll,
	VerbAddTag,
	VerbRemoveTag,
}

// ParseVerb rejects anything outside the closed verb set.
func ParseVerb(s string) (Verb, error) {
	for _, v := range verbs {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVerb, s)
}

// Request is everything a single verb may need. Fields that a verb does not
// use are ignored.
type Request struct {
	Verb    Verb
	OwnerID uint

	URL       string // add
	EntryID   uint   // delete, toggles, add_tag, remove_tag
	TagValues string // add_tag, comma separated
	TagID     uint   // remove_tag

	// Bulk marks calls made by an importer: the duplicate lookup is skipped
	// unless configured otherwise and messages are not queued.
	Bulk bool

	// Credentials are forwarded to the content extractor on add.
	Credentials *fetcher.Credentials
}

// Outcome reports what a dispatched verb did. Message is always set.
type Outcome struct {
	Verb     Verb             `json:"verb"`
	EntryID  uint             `json:"entry_id,omitempty"`
	Replaced uint             `json:"replaced,omitempty"` // id of the superseded duplicate
	Affected int64            `json:"affected"`
	Favorite bool             `json:"favorite,omitempty"` // add only: favorite state of the new entry
	Message  messages.Message `json:"message"`
}

// splitTagValues trims each comma separated value and drops empty ones.
func splitTagValues(raw string) []string {
	var values []string
	seen := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		value := strings.TrimSpace(part)
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		values = append(values, value)
	}
	return values
}

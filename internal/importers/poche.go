package importers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"strings"
)

// pocheFlagSet is the value the poche export uses for a set flag.
const pocheFlagSet = "-1"

type pocheRecord struct {
	URL    string          `json:"url"`
	IsFav  json.RawMessage `json:"is_fav"`
	IsRead json.RawMessage `json:"is_read"`
}

// NormalizePoche reads a poche JSON export, a list of entry records where
// is_fav and is_read hold -1 when set.
func NormalizePoche(r io.Reader) (iter.Seq[Item], error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	if tok != json.Delim('[') {
		return nil, fmt.Errorf("%w: expected a JSON list", ErrMalformedFile)
	}

	return func(yield func(Item) bool) {
		for dec.More() {
			var record pocheRecord
			if err := dec.Decode(&record); err != nil {
				var typeErr *json.UnmarshalTypeError
				if errors.As(err, &typeErr) {
					if !yield(Item{}) {
						return
					}
					continue
				}
				log.Printf("Poche import stopped: %v", err)
				return
			}
			item := Item{
				URL:      strings.TrimSpace(record.URL),
				Favorite: pocheFlag(record.IsFav),
				Archived: pocheFlag(record.IsRead),
			}
			if !yield(item) {
				return
			}
		}
	}, nil
}

// pocheFlag accepts the sentinel as a number or a string.
func pocheFlag(raw json.RawMessage) bool {
	value := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	return value == pocheFlagSet
}

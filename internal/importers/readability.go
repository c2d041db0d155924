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

// NormalizeReadability reads a Readability JSON export: an object whose
// values are lists of flat records such as
//
//	{"bookmarks": [{"article__url": "...", "favorite": true, "archive": false}]}
//
// A bare top-level list of records is accepted too.
func NormalizeReadability(r io.Reader) (iter.Seq[Item], error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}

	switch tok {
	case json.Delim('['):
		return func(yield func(Item) bool) {
			readabilityRecords(dec, yield)
		}, nil
	case json.Delim('{'):
		return func(yield func(Item) bool) {
			for dec.More() {
				if _, err := dec.Token(); err != nil {
					log.Printf("Readability import stopped: %v", err)
					return
				}
				var group json.RawMessage
				if err := dec.Decode(&group); err != nil {
					log.Printf("Readability import stopped: %v", err)
					return
				}
				var records []json.RawMessage
				if err := json.Unmarshal(group, &records); err != nil {
					continue
				}
				for _, raw := range records {
					var record map[string]any
					if err := json.Unmarshal(raw, &record); err != nil {
						record = nil
					}
					if !yield(readabilityItem(record)) {
						return
					}
				}
			}
		}, nil
	default:
		return nil, fmt.Errorf("%w: expected a JSON object or list", ErrMalformedFile)
	}
}

func readabilityRecords(dec *json.Decoder, yield func(Item) bool) {
	for dec.More() {
		var record map[string]any
		if err := dec.Decode(&record); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				if !yield(Item{}) {
					return
				}
				continue
			}
			log.Printf("Readability import stopped: %v", err)
			return
		}
		if !yield(readabilityItem(record)) {
			return
		}
	}
}

func readabilityItem(record map[string]any) Item {
	url, _ := record["article__url"].(string)
	return Item{
		URL:      strings.TrimSpace(url),
		Favorite: truthy(record["favorite"]),
		Archived: truthy(record["archive"]),
	}
}

// truthy accepts JSON true and the string "true".
func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(strings.TrimSpace(val), "true")
	default:
		return false
	}
}

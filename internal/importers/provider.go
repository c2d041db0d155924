package importers

import (
	"errors"
	"fmt"
	"io"
	"iter"
)

var (
	ErrUnknownProvider = errors.New("unknown import provider")
	ErrMalformedFile   = errors.New("malformed import file")
)

// Item is one link read from an export file. Items with an empty or invalid
// URL are still yielded so the importer can count them as skipped.
type Item struct {
	URL      string
	Favorite bool
	Archived bool
}

// Normalizer parses one export format. Parsing errors that make the whole
// file unreadable are returned up front; per-item problems are not.
type Normalizer func(r io.Reader) (iter.Seq[Item], error)

type Provider string

const (
	ProviderPocket      Provider = "pocket"
	ProviderInstapaper  Provider = "instapaper"
	ProviderReadability Provider = "readability"
	ProviderPoche       Provider = "poche"
)

// Providers lists every supported provider.
func Providers() []Provider {
	return []Provider{ProviderPocket, ProviderInstapaper, ProviderReadability, ProviderPoche}
}

func ParseProvider(s string) (Provider, error) {
	for _, p := range Providers() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}

// Normalizer returns the parser bound to the provider.
func (p Provider) Normalizer() (Normalizer, error) {
	switch p {
	case ProviderPocket:
		return NormalizePocket, nil
	case ProviderInstapaper:
		return NormalizeInstapaper, nil
	case ProviderReadability:
		return NormalizeReadability, nil
	case ProviderPoche:
		return NormalizePoche, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, string(p))
	}
}

package fetcher

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Elements that never belong in stored article bodies.
const strippedElements = "script, style, iframe, object, embed, form, noscript"

// Clean removes active content and event handler attributes from an
// extracted HTML fragment and returns the remaining fragment.
func Clean(fragment string) (string, error) {
	if strings.TrimSpace(fragment) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}

	doc.Find(strippedElements).Remove()
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			kept := node.Attr[:0]
			for _, attr := range node.Attr {
				if strings.HasPrefix(strings.ToLower(attr.Key), "on") {
					continue
				}
				if (attr.Key == "href" || attr.Key == "src") &&
					strings.HasPrefix(strings.ToLower(strings.TrimSpace(attr.Val)), "javascript:") {
					continue
				}
				kept = append(kept, attr)
			}
			node.Attr = kept
		}
	})

	html, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(html), nil
}

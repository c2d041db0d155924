package importers

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NormalizePocket reads a Pocket HTML export. Links of the first <ul> are
// unread; links of any later <ul> are read.
func NormalizePocket(r io.Reader) (iter.Seq[Item], error) {
	return normalizeLists(r, "ul")
}

// NormalizeInstapaper reads an Instapaper HTML export. Links of the first
// <ol> are unread; links of any later <ol> are archived.
func NormalizeInstapaper(r io.Reader) (iter.Seq[Item], error) {
	return normalizeLists(r, "ol")
}

func normalizeLists(r io.Reader, listTag string) (iter.Seq[Item], error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}

	lists := doc.Find(listTag)
	return func(yield func(Item) bool) {
		lists.EachWithBreak(func(listIndex int, list *goquery.Selection) bool {
			archived := listIndex > 0
			keepGoing := true
			list.ChildrenFiltered("li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
				href, _ := li.Find("a").First().Attr("href")
				keepGoing = yield(Item{URL: strings.TrimSpace(href), Archived: archived})
				return keepGoing
			})
			return keepGoing
		})
	}, nil
}

package docquery

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/magnet-resolver/pkg/failure"
	"golang.org/x/net/html"
)

/*
Responsibilities
- Parse fetched bytes into a DOM tree
- Find list entries on a film list page
- Find the first magnet link on a search result page

Queries are pure: same bytes, same answers. Nothing here performs I/O.
*/

func Parse(body []byte) (Document, failure.ClassifiedError) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Document{}, &ParseError{
			Message:   "document body is empty",
			Retryable: false,
			Cause:     ErrCauseEmptyDocument,
		}
	}

	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return Document{}, &ParseError{
			Message:   fmt.Sprintf("failed to parse HTML: %v", err),
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
	}

	return Document{
		root: root,
		doc:  goquery.NewDocumentFromNode(root),
	}, nil
}

// ExtractCandidates returns up to limit list entries in document order.
// Entries without a usable title are skipped and do not count toward limit.
// A limit <= 0 means no limit.
func ExtractCandidates(doc Document, limit int) []CandidateRef {
	if doc.doc == nil {
		return nil
	}

	var containers *goquery.Selection
	for _, selector := range CandidateContainerSelectors {
		containers = doc.doc.Find(selector)
		if containers.Length() > 0 {
			break
		}
	}
	if containers == nil || containers.Length() == 0 {
		return nil
	}

	var refs []CandidateRef
	containers.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		ref, ok := candidateFromContainer(s)
		if ok {
			refs = append(refs, ref)
		}
		return limit <= 0 || len(refs) < limit
	})
	return refs
}

func candidateFromContainer(s *goquery.Selection) (CandidateRef, bool) {
	altText := ""
	if img := s.Find(posterImageSelector).First(); img.Length() > 0 {
		altText, _ = img.Attr("alt")
	}

	title := cleanTitle(altText)
	if title == "" {
		title = cleanTitle(attrInSubtree(s, titleAttributes))
	}
	if title == "" {
		return CandidateRef{}, false
	}
	return CandidateRef{
		Title:   title,
		AltText: altText,
	}, true
}

// attrInSubtree returns the first non-empty value among attrs on s or any descendant.
func attrInSubtree(s *goquery.Selection, attrs []string) string {
	for _, attr := range attrs {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return v
		}
		found := s.Find("[" + attr + "]").First()
		if v, ok := found.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func cleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = strings.TrimPrefix(title, altTextPrefix)
	return strings.TrimSpace(title)
}

// ExtractFirstMagnetLink returns the href of the first magnet anchor in document order.
func ExtractFirstMagnetLink(doc Document) (string, bool) {
	if doc.doc == nil {
		return "", false
	}
	href, ok := doc.doc.Find(magnetLinkSelector).First().Attr("href")
	if !ok {
		return "", false
	}
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	return href, true
}

package docquery

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed HTML page ready for queries.
type Document struct {
	root *html.Node
	doc  *goquery.Document
}

func (d Document) Root() *html.Node {
	return d.root
}

// CandidateRef is one list entry as it appears in markup.
type CandidateRef struct {
	Title   string
	AltText string
}

package docquery

import (
	"bytes"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const DefaultExcerptRunes = 300

// Excerpt renders the visible part of a page as a short single-line text,
// for logs about pages that did not contain what was expected.
// It never fails; unreadable input yields a raw-text excerpt.
func Excerpt(body []byte, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = DefaultExcerptRunes
	}

	text := string(body)
	root, err := html.Parse(bytes.NewReader(body))
	if err == nil {
		doc := goquery.NewDocumentFromNode(root)
		doc.Find("script, style, noscript, svg").Remove()

		node := root
		if b := doc.Find("body").First(); b.Length() > 0 {
			node = b.Nodes[0]
		}

		conv := converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		)
		if markdown, convErr := conv.ConvertNode(node); convErr == nil {
			text = string(markdown)
		}
	}

	return truncateRunes(strings.Join(strings.Fields(text), " "), maxRunes)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

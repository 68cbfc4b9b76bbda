package scraper

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// SummaryParagraphs is how many paragraphs make up a summary
const SummaryParagraphs = 5

// Paragraphs returns the text content of the first limit <p> elements in
// document order. A limit below 1 returns every paragraph.
func Paragraphs(r io.Reader, limit int) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var paragraphs []string
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.P {
			paragraphs = append(paragraphs, text(n))
			return limit < 1 || len(paragraphs) < limit
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if !walk(child) {
				return false
			}
		}
		return true
	}
	walk(doc)

	return paragraphs, nil
}

// text concatenates every text node under n
func text(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(n)
	return sb.String()
}

// response/extract.go
package response

import (
	"bytes"
	"strings"

	"github.com/antchfx/xmlquery"
	"golang.org/x/net/html"
)

// ExtractHTMLText returns the readable text of an HTML document. Script and
// style contents are skipped, whitespace runs collapse to single spaces and
// block elements are separated by newlines. Unparseable input is returned as is.
func ExtractHTMLText(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return string(body)
	}

	var lines []string
	var current strings.Builder
	flush := func() {
		if line := strings.TrimSpace(current.String()); line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "head", "noscript":
				return
			case "br":
				flush()
				return
			}
		case html.TextNode:
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				if current.Len() > 0 {
					current.WriteString(" ")
				}
				current.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
		if n.Type == html.ElementNode && isBlockElement(n.Data) {
			flush()
		}
	}

	traverse(doc)
	flush()
	return strings.Join(lines, "\n")
}

func isBlockElement(tag string) bool {
	switch tag {
	case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "li", "tr", "title",
		"pre", "blockquote", "section", "article", "header", "footer", "table", "ul", "ol":
		return true
	}
	return false
}

// ExtractXMLText dynamically walks an XML document and joins the non-blank text
// nodes with "; ". Unparseable input is returned as is.
func ExtractXMLText(body []byte) string {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return string(body)
	}

	var messages []string
	var traverse func(*xmlquery.Node)
	traverse = func(n *xmlquery.Node) {
		if (n.Type == xmlquery.TextNode || n.Type == xmlquery.CharDataNode) && strings.TrimSpace(n.Data) != "" {
			messages = append(messages, strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}

	traverse(doc)
	return strings.Join(messages, "; ")
}

package parser

import (
	"io"
	"strings"

	"github.com/dastanaron/signupsaver/internal/models"

	"golang.org/x/net/html"
)

// ParseBookmarksHTML reads a Netscape bookmark file and returns every link in document
// order. Folder structure is flattened; everything ends up in the one saver folder.
func ParseBookmarksHTML(r io.Reader) ([]models.Tab, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var tabs []models.Tab

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		// Found bookmark <A HREF=...>
		if n.Type == html.ElementNode && n.Data == "a" {
			var t models.Tab
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					t.URL = strings.TrimSpace(attr.Val)
				}
			}
			t.Title = strings.TrimSpace(textContent(n))

			if t.URL != "" {
				tabs = append(tabs, t)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return tabs, nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

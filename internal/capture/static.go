// internal/capture/static.go
package capture

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/domlens-cli/api/schemas"
	"github.com/xkilldash9x/domlens-cli/internal/snapshot"
)

// defaultViewport is the synthetic geometry assigned by the static capturer.
var defaultViewport = schemas.Viewport{Width: 1280, Height: 800, ContentHeight: 800}

// ParseHTML builds a snapshot from a static HTML document. Without a layout
// engine there is no real geometry, so nodes get no layout box and
// visibility is derived from the hidden attribute and inline display/
// visibility styles only. Used by the offline snapshot command and as the
// fixture builder in tests.
func ParseHTML(r io.Reader) (*schemas.Snapshot, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	root := findElement(doc)
	if root == nil {
		return snapshot.Build("", nil, defaultViewport)
	}

	var nodes []*schemas.Node
	nextID := int64(1)

	var walk func(hn *html.Node, parent *schemas.Node, depth int, hidden bool) *schemas.Node
	walk = func(hn *html.Node, parent *schemas.Node, depth int, hidden bool) *schemas.Node {
		node := &schemas.Node{
			ID:    nextID,
			Depth: depth,
		}
		nextID++

		switch hn.Type {
		case html.ElementNode:
			node.Type = schemas.NodeTypeElement
			node.Tag = strings.ToLower(hn.Data)
			if len(hn.Attr) > 0 {
				node.Attributes = make(map[string]string, len(hn.Attr))
				for _, a := range hn.Attr {
					node.Attributes[a.Key] = a.Val
				}
			}
			hidden = hidden || isHiddenMarkup(node)
			node.Text = directText(hn)
		case html.TextNode:
			text := strings.TrimSpace(hn.Data)
			if text == "" {
				return nil
			}
			node.Type = schemas.NodeTypeText
			node.Tag = "#text"
			node.Text = text
		default:
			return nil
		}

		node.Visible = !hidden
		node.InViewport = !hidden
		if parent != nil {
			pid := parent.ID
			node.ParentID = &pid
		}
		nodes = append(nodes, node)

		if hn.Type == html.ElementNode {
			for c := hn.FirstChild; c != nil; c = c.NextSibling {
				if child := walk(c, node, depth+1, hidden); child != nil {
					node.ChildIDs = append(node.ChildIDs, child.ID)
				}
			}
		}
		return node
	}
	walk(root, nil, 0, false)

	return snapshot.Build("", nodes, defaultViewport)
}

// ParseHTMLString is a convenience wrapper around ParseHTML.
func ParseHTMLString(s string) (*schemas.Snapshot, error) {
	return ParseHTML(strings.NewReader(s))
}

func findElement(doc *html.Node) *html.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode {
			return n
		}
	}
	return nil
}

// directText collects the node's own text children, not descendants.
func directText(hn *html.Node) string {
	var parts []string
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			if t := strings.TrimSpace(c.Data); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " ")
}

func isHiddenMarkup(n *schemas.Node) bool {
	if n.HasAttr("hidden") {
		return true
	}
	style := strings.ToLower(n.Attr("style"))
	return strings.Contains(style, "display:none") || strings.Contains(style, "display: none") ||
		strings.Contains(style, "visibility:hidden") || strings.Contains(style, "visibility: hidden")
}

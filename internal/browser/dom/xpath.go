// internal/browser/dom/xpath.go
package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// AnchoredPath generates an XPath for node that is anchored on the nearest ancestor
// carrying an id, which keeps it short and stable while the rest of the page changes.
func AnchoredPath(node *html.Node) string {
	return buildPath(node, true)
}

// PositionalPath generates a purely positional XPath from the root to node. A step
// carries an index only when a sibling shares its tag name, so the path selects exactly
// one element for any attached node.
func PositionalPath(node *html.Node) string {
	return buildPath(node, false)
}

func buildPath(node *html.Node, anchorOnID bool) string {
	if node == nil {
		return ""
	}

	var path []string
	anchored := false
	// Traverse up the tree from the node to the root.
	for n := node; n != nil && n.Type != html.DocumentNode; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		tag := strings.ToLower(n.Data)
		if tag == "" {
			continue
		}

		if anchorOnID {
			if id := getAttr(n, "id"); id != "" {
				path = append(path, fmt.Sprintf("//*[@id=%s]", XPathLiteral(id)))
				anchored = true
				break
			}
		}

		index, total := siblingPosition(n, tag)
		switch {
		case anchorOnID:
			// Anchored paths always carry an index.
			path = append(path, fmt.Sprintf("%s[%d]", tag, index))
		case total > 1:
			path = append(path, fmt.Sprintf("%s[%d]", tag, index))
		default:
			path = append(path, tag)
		}
	}

	if len(path) == 0 {
		return "/"
	}

	// Reverse to go from root (or id anchor) to the node.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	xpath := strings.Join(path, "/")
	if !anchored {
		xpath = "/" + xpath
	}
	return xpath
}

// siblingPosition returns the 1-based index of n among element siblings with the same
// tag, and how many such siblings exist in total (including n).
func siblingPosition(n *html.Node, tag string) (int, int) {
	index := 1
	for prev := n.PrevSibling; prev != nil; prev = prev.PrevSibling {
		if prev.Type == html.ElementNode && strings.ToLower(prev.Data) == tag {
			index++
		}
	}
	total := index
	for next := n.NextSibling; next != nil; next = next.NextSibling {
		if next.Type == html.ElementNode && strings.ToLower(next.Data) == tag {
			total++
		}
	}
	return index, total
}

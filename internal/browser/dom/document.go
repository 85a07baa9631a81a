// internal/browser/dom/document.go
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ErrFrameInaccessible is returned when a frame's content document is not reachable
// (for example a cross-origin frame whose document was never attached).
var ErrFrameInaccessible = errors.New("frame content document is not accessible")

// Document is a mutable, parsed document tree together with the URL it was loaded from.
// It is not safe for concurrent use; callers own it exclusively for the duration of a pass.
type Document struct {
	root   *html.Node
	rawURL string
	url    *url.URL
	logger *zap.Logger

	frames    map[*html.Node]*Document
	listeners map[*html.Node]map[string][]Listener
	journal   []Mutation

	// Set when this document is the content document of a frame in parent.
	parent    *Document
	framePath string
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Parse reads HTML from r and builds a Document for pageURL.
func Parse(r io.Reader, pageURL string, opts ...Option) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return NewDocument(root, pageURL, opts...), nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(markup, pageURL string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(markup), pageURL, opts...)
}

// NewDocument wraps an already parsed tree.
func NewDocument(root *html.Node, pageURL string, opts ...Option) *Document {
	d := &Document{
		root:      root,
		rawURL:    pageURL,
		logger:    zap.NewNop(),
		frames:    make(map[*html.Node]*Document),
		listeners: make(map[*html.Node]map[string][]Listener),
	}
	if u, err := url.Parse(pageURL); err == nil {
		d.url = u
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Named("dom")
	return d
}

// Root returns the document node.
func (d *Document) Root() *html.Node { return d.root }

// URL returns the page URL as supplied.
func (d *Document) URL() string { return d.rawURL }

// Host returns the lowercased host name of the page URL, or "" if it has none.
func (d *Document) Host() string {
	if d.url == nil {
		return ""
	}
	return strings.ToLower(d.url.Hostname())
}

// Path returns the path component of the page URL.
func (d *Document) Path() string {
	if d.url == nil {
		return ""
	}
	return d.url.Path
}

// Body returns the body element, or nil.
func (d *Document) Body() *Element {
	var find func(n *html.Node) *html.Node
	find = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && n.Data == "body" {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := find(c); found != nil {
				return found
			}
		}
		return nil
	}
	if d.root == nil {
		return nil
	}
	return d.Wrap(find(d.root))
}

// Wrap returns an Element handle for n. It returns nil for nil or non-element nodes.
func (d *Document) Wrap(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	return &Element{doc: d, node: n}
}

// ElementByID returns the first element whose id equals id.
func (d *Document) ElementByID(id string) *Element {
	if id == "" {
		return nil
	}
	var found *html.Node
	walkElements(d.root, func(n *html.Node) bool {
		if getAttr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return d.Wrap(found)
}

// AttachFrame associates frameDoc as the content document of the frame element.
func (d *Document) AttachFrame(frame *Element, frameDoc *Document) {
	if frame == nil || frameDoc == nil {
		return
	}
	frameDoc.parent = d
	frameDoc.framePath = AnchoredPath(frame.node)
	d.frames[frame.node] = frameDoc
}

// DocumentOrder returns a map from every element node to its pre-order position.
func (d *Document) DocumentOrder() map[*html.Node]int {
	order := make(map[*html.Node]int)
	i := 0
	walkElements(d.root, func(n *html.Node) bool {
		order[n] = i
		i++
		return true
	})
	return order
}

// Render serialises the current tree.
func (d *Document) Render(w io.Writer) error {
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}
	return nil
}

// String renders the document, returning "" on failure.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// walkElements visits element nodes in pre-order until fn returns false.
func walkElements(n *html.Node, fn func(*html.Node) bool) bool {
	if n == nil {
		return true
	}
	if n.Type == html.ElementNode {
		if !fn(n) {
			return false
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walkElements(c, fn) {
			return false
		}
	}
	return true
}

func getAttr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) bool {
	for i, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return true
		}
	}
	return false
}

// replaceChildrenWithText clears n and appends a single text node.
func replaceChildrenWithText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

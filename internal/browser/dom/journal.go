// internal/browser/dom/journal.go
package dom

import "golang.org/x/net/html"

// MutationKind classifies a journaled change.
type MutationKind string

const (
	MutationSetAttr     MutationKind = "set-attribute"
	MutationRemoveAttr  MutationKind = "remove-attribute"
	MutationSetValue    MutationKind = "set-value"
	MutationSetText     MutationKind = "set-text"
	MutationSetChecked  MutationKind = "set-checked"
	MutationSelectIndex MutationKind = "select-index"
	MutationEvent       MutationKind = "event"
)

// Mutation records one change made to the tree, addressed by an absolute XPath so that
// it can be replayed against another copy of the same page.
type Mutation struct {
	// Frame is the path of the frame element hosting the target, empty for the top document.
	Frame string       `json:"frame,omitempty"`
	Path  string       `json:"path"`
	Kind  MutationKind `json:"kind"`
	Name  string       `json:"name,omitempty"`
	Value string       `json:"value,omitempty"`
}

// Mutations returns the journal of changes made to this document and its attached frames.
func (d *Document) Mutations() []Mutation {
	out := make([]Mutation, len(d.journal))
	copy(out, d.journal)
	return out
}

// ResetMutations clears the journal.
func (d *Document) ResetMutations() { d.journal = nil }

func (d *Document) record(n *html.Node, kind MutationKind, name, value string) {
	d.append(Mutation{Path: AnchoredPath(n), Kind: kind, Name: name, Value: value})
}

func (d *Document) append(m Mutation) {
	if d.parent == nil {
		d.journal = append(d.journal, m)
		return
	}
	if m.Frame == "" {
		m.Frame = d.framePath
	} else {
		m.Frame = d.framePath + " >> " + m.Frame
	}
	d.parent.append(m)
}

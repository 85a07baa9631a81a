// internal/browser/dom/events.go
package dom

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Event is delivered to listeners during dispatch.
type Event struct {
	Type          string
	Target        *Element
	CurrentTarget *Element // nil when delivered to the document itself
}

// Listener handles an event. Returning an error stops propagation and fails the dispatch.
type Listener func(ev Event) error

// AddEventListener registers fn for eventType on target. A nil target registers the
// listener on the document, which sees every bubbling event.
func (d *Document) AddEventListener(target *Element, eventType string, fn Listener) {
	node := d.root
	if target != nil {
		node = target.node
	}
	byType, ok := d.listeners[node]
	if !ok {
		byType = make(map[string][]Listener)
		d.listeners[node] = byType
	}
	byType[eventType] = append(byType[eventType], fn)
}

// Dispatch fires a bubbling event of the given type at e. The event is journaled
// before listeners run.
func (e *Element) Dispatch(eventType string) error {
	e.doc.record(e.node, MutationEvent, eventType, "")
	ev := Event{Type: eventType, Target: e}

	for n := e.node; n != nil; n = n.Parent {
		fns := e.doc.listeners[n][eventType]
		if len(fns) == 0 {
			continue
		}
		if n.Type == html.ElementNode {
			ev.CurrentTarget = e.doc.Wrap(n)
		} else {
			ev.CurrentTarget = nil
		}
		for _, fn := range fns {
			if err := fn(ev); err != nil {
				e.doc.logger.Debug("Event listener failed.", zap.String("event", eventType), zap.Error(err))
				return fmt.Errorf("%s listener failed: %w", eventType, err)
			}
		}
	}
	return nil
}

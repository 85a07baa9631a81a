// internal/browser/live/script.go
package live

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/autofill/internal/browser/dom"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// frameSnapshotScript returns the outer HTML of every frame's document in document
// order, null where the frame is cross-origin or not loaded.
const frameSnapshotScript = `Array.from(document.querySelectorAll('iframe, frame')).map(function (f) {
  try {
    var d = f.contentDocument;
    return d && d.documentElement ? d.documentElement.outerHTML : null;
  } catch (e) {
    return null;
  }
})`

type replayResult struct {
	Applied int      `json:"applied"`
	Missing []string `json:"missing"`
}

// replayTemplate resolves each journaled XPath, descending through " >> " separated
// frame paths, and applies the change with native property setters so framework
// bindings observe it.
const replayTemplate = `(function (muts) {
  function find(doc, path) {
    return doc.evaluate(path, doc, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
  }
  function resolve(m) {
    var doc = document;
    if (m.frame) {
      var hops = m.frame.split(' >> ');
      for (var i = 0; i < hops.length; i++) {
        var f = find(doc, hops[i]);
        if (!f) return null;
        try { doc = f.contentDocument; } catch (e) { return null; }
        if (!doc) return null;
      }
    }
    return find(doc, m.path);
  }
  function setNative(el, prop, v) {
    var proto = Object.getPrototypeOf(el);
    var desc = proto && Object.getOwnPropertyDescriptor(proto, prop);
    if (desc && desc.set) { desc.set.call(el, v); } else { el[prop] = v; }
  }
  var out = {applied: 0, missing: []};
  muts.forEach(function (m) {
    var el = resolve(m);
    if (!el) { out.missing.push(m.path); return; }
    switch (m.kind) {
    case 'set-attribute': el.setAttribute(m.name, m.value || ''); break;
    case 'remove-attribute': el.removeAttribute(m.name); break;
    case 'set-value': setNative(el, 'value', m.value || ''); break;
    case 'set-text': el.textContent = m.value || ''; break;
    case 'set-checked': setNative(el, 'checked', m.value === 'true'); break;
    case 'select-index': setNative(el, 'selectedIndex', parseInt(m.value, 10)); break;
    case 'event': el.dispatchEvent(new Event(m.name, {bubbles: true, cancelable: true})); break;
    default: out.missing.push(m.path); return;
    }
    out.applied++;
  });
  return out;
})(%s)`

// mutationScript renders a self-contained script that replays muts.
func mutationScript(muts []dom.Mutation) (string, error) {
	payload, err := json.Marshal(muts)
	if err != nil {
		return "", fmt.Errorf("failed to encode mutations: %w", err)
	}
	return fmt.Sprintf(replayTemplate, payload), nil
}

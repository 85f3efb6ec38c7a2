package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// wireNode is the TipTap compatible payload shape shared by JSON and CBOR.
type wireNode struct {
	Type    string         `json:"type" cbor:"type"`
	Attrs   map[string]any `json:"attrs,omitempty" cbor:"attrs,omitempty"`
	Content []wireNode     `json:"content,omitempty" cbor:"content,omitempty"`
	Marks   []wireMark     `json:"marks,omitempty" cbor:"marks,omitempty"`
	Text    string         `json:"text,omitempty" cbor:"text,omitempty"`
}

type wireMark struct {
	Type  string         `json:"type" cbor:"type"`
	Attrs map[string]any `json:"attrs,omitempty" cbor:"attrs,omitempty"`
}

// ParseOption configures payload parsing.
type ParseOption func(*parseConfig)

type parseConfig struct {
	warn   func(msg string)
	strict bool
}

// WithWarnings installs a callback receiving one message per dropped
// attribute, unknown type or repaired node.
func WithWarnings(fn func(msg string)) ParseOption {
	return func(c *parseConfig) { c.warn = fn }
}

// Strict disables structural repair: invalid content fails with
// ErrStructuralViolation instead of being rewritten.
func Strict() ParseOption {
	return func(c *parseConfig) { c.strict = true }
}

// ParseJSON decodes a JSON payload into a document.
func ParseJSON(data []byte, opts ...ParseOption) (*Document, error) {
	var w wireNode
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: json: %v", ErrInvalidPayload, err)
	}
	return fromWireRoot(w, opts)
}

// ParseCBOR decodes a CBOR payload into a document.
func ParseCBOR(data []byte, opts ...ParseOption) (*Document, error) {
	var w wireNode
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: cbor: %v", ErrInvalidPayload, err)
	}
	return fromWireRoot(w, opts)
}

// MarshalJSON encodes the document as a TipTap JSON payload.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(d.Tree()))
}

// MarshalCBOR encodes the document in the same shape as CBOR.
func (d *Document) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(toWire(d.Tree()))
}

// MarshalJSON encodes a detached tree.
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(n))
}

// UnmarshalJSON decodes a detached tree without validation. Unknown types
// are dropped.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&w); err != nil {
		return err
	}
	out, ok := fromWire(w, &parseConfig{warn: func(string) {}})
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, w.Type)
	}
	*n = out
	return nil
}

func fromWireRoot(w wireNode, opts []ParseOption) (*Document, error) {
	cfg := &parseConfig{warn: func(string) {}}
	for _, opt := range opts {
		opt(cfg)
	}
	root, ok := fromWire(w, cfg)
	if !ok {
		return nil, fmt.Errorf("%w: root type %q", ErrUnknownKind, w.Type)
	}
	if !cfg.strict {
		var notes []string
		root, notes = Repair(Normalize(root))
		for _, note := range notes {
			cfg.warn("repaired " + note)
		}
	}
	return New(root)
}

func fromWire(w wireNode, cfg *parseConfig) (Node, bool) {
	k, ok := KindByName(w.Type)
	if !ok {
		cfg.warn(fmt.Sprintf("unknown node type %q dropped", w.Type))
		return Node{}, false
	}
	n := Node{Kind: k, Text: w.Text}
	var dropped []string
	n.Attrs, dropped = normalizeAttrs(k.AttrSpecs(), w.Attrs)
	for _, name := range dropped {
		cfg.warn(fmt.Sprintf("%s: unknown attribute %q dropped", k, name))
	}
	for _, wm := range w.Marks {
		t, ok := MarkTypeByName(wm.Type)
		if !ok {
			cfg.warn(fmt.Sprintf("unknown mark type %q dropped", wm.Type))
			continue
		}
		n.Marks = n.Marks.Add(NewMark(t, wm.Attrs))
	}
	for _, wc := range w.Content {
		if c, ok := fromWire(wc, cfg); ok {
			n.Content = append(n.Content, c)
		}
	}
	return n, true
}

func toWire(n Node) wireNode {
	w := wireNode{Type: n.Kind.String(), Text: n.Text}
	if len(n.Attrs) > 0 {
		w.Attrs = map[string]any(n.Attrs.Clone())
	}
	for _, m := range n.Marks {
		wm := wireMark{Type: m.Type.String()}
		if len(m.Attrs) > 0 {
			wm.Attrs = map[string]any(m.Attrs.Clone())
		}
		w.Marks = append(w.Marks, wm)
	}
	for _, c := range n.Content {
		w.Content = append(w.Content, toWire(c))
	}
	return w
}

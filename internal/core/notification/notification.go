// Package notification accumulates validation failures keyed by field path.
//
// A key is either a dot-joined field path ("address.street") or, for errors
// that are not tied to a field, the message itself. Throughout the API an
// empty field argument means "no field".
package notification

import (
	"encoding/json"
	"slices"
	"strings"
)

const pathSeparator = "."

type entry struct {
	messages []string
	// global entries were recorded without a field; their key is the message.
	global bool
}

// Notification is an ordered collection of error messages. It is owned by a
// single caller and is not safe for concurrent use.
type Notification struct {
	keys    []string
	entries map[string]*entry
}

func New() *Notification {
	return &Notification{entries: make(map[string]*entry)}
}

func (n *Notification) put(key string, e *entry) {
	if _, exists := n.entries[key]; !exists {
		n.keys = append(n.keys, key)
	}
	n.entries[key] = e
}

func (n *Notification) remove(key string) {
	if _, exists := n.entries[key]; !exists {
		return
	}
	delete(n.entries, key)
	n.keys = slices.DeleteFunc(n.keys, func(k string) bool { return k == key })
}

// AddError appends message under field, or under the message itself when
// field is empty. A message already present under the key is not repeated.
func (n *Notification) AddError(message, field string) {
	key := field
	if key == "" {
		key = message
	}

	e, exists := n.entries[key]
	if !exists {
		e = &entry{global: field == ""}
		n.put(key, e)
	} else if field != "" {
		e.global = false
	}

	if !slices.Contains(e.messages, message) {
		e.messages = append(e.messages, message)
	}
}

// SetError replaces the messages recorded under field. Without a field every
// message is stored as its own global error. Setting a field to no messages
// removes it.
func (n *Notification) SetError(field string, messages ...string) {
	if field == "" {
		for _, m := range messages {
			n.put(m, &entry{messages: []string{m}, global: true})
		}
		return
	}

	if len(messages) == 0 {
		n.remove(field)
		return
	}
	n.put(field, &entry{messages: slices.Clone(messages)})
}

// GetErrors returns the messages for field, or every message in insertion
// order when field is empty. The result is never nil.
func (n *Notification) GetErrors(field string) []string {
	if field != "" {
		e, ok := n.entries[field]
		if !ok {
			return []string{}
		}
		return slices.Clone(e.messages)
	}

	all := []string{}
	for _, key := range n.keys {
		all = append(all, n.entries[key].messages...)
	}
	return all
}

// HasErrors reports whether field has errors, or whether any error exists
// when field is empty.
func (n *Notification) HasErrors(field string) bool {
	if field != "" {
		_, ok := n.entries[field]
		return ok
	}
	return len(n.keys) > 0
}

// Fields returns the keys in insertion order.
func (n *Notification) Fields() []string {
	return slices.Clone(n.keys)
}

// ErrorsAsObject nests the errors by splitting every key on ".". Leaves are
// []string, inner nodes are map[string]any.
func (n *Notification) ErrorsAsObject() map[string]any {
	return n.tree().toMap()
}

// CopyErrors overwrites, path by path, the errors of n with those of source.
// Paths present only in n are left untouched.
func (n *Notification) CopyErrors(source *Notification) {
	if source == nil {
		return
	}
	source.tree().walk(nil, func(path []string, messages []string) {
		n.SetError(strings.Join(path, pathSeparator), messages...)
	})
}

// ToJSON renders global errors as bare strings and field errors as
// single-key objects, in insertion order.
func (n *Notification) ToJSON() []any {
	out := make([]any, 0, len(n.keys))
	for _, key := range n.keys {
		e := n.entries[key]
		if e.global {
			out = append(out, key)
			continue
		}
		out = append(out, map[string][]string{key: slices.Clone(e.messages)})
	}
	return out
}

func (n *Notification) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.ToJSON())
}

func (n *Notification) tree() *node {
	root := newNode()
	for _, key := range n.keys {
		parts := strings.Split(key, pathSeparator)
		level := root
		for i, part := range parts {
			child := level.child(part)
			if i == len(parts)-1 {
				if child.children != nil {
					child.children = nil
					child.order = nil
				}
				child.messages = append(child.messages, n.entries[key].messages...)
				continue
			}
			if child.children == nil {
				child.children = make(map[string]*node)
				child.messages = nil
			}
			level = child
		}
	}
	return root
}

// node is an insertion-ordered tree level. A node with nil children is a leaf.
type node struct {
	order    []string
	children map[string]*node
	messages []string
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

func (nd *node) child(name string) *node {
	c, ok := nd.children[name]
	if !ok {
		c = &node{}
		nd.children[name] = c
		nd.order = append(nd.order, name)
	}
	return c
}

func (nd *node) toMap() map[string]any {
	out := make(map[string]any, len(nd.order))
	for _, name := range nd.order {
		c := nd.children[name]
		if c.children == nil {
			out[name] = slices.Clone(c.messages)
			continue
		}
		out[name] = c.toMap()
	}
	return out
}

func (nd *node) walk(prefix []string, visit func(path []string, messages []string)) {
	for _, name := range nd.order {
		c := nd.children[name]
		path := append(slices.Clone(prefix), name)
		if c.children == nil {
			visit(path, c.messages)
			continue
		}
		c.walk(path, visit)
	}
}

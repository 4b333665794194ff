// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"bytes"
	"encoding/json"
)

// Assemble materializes a node from flat storage rows. Keys are paths
// relative to the node ("" is the node's own leaf value, "votes/r1/p1" a
// descendant leaf). Descendants are overlaid on the leaf object so a
// partial write beneath a whole-object write wins, matching memstore.
// Returns nil when there is nothing at the node.
func Assemble(rows map[string]json.RawMessage) json.RawMessage {
	root := &assembleNode{}
	for rel, raw := range rows {
		n := root
		for _, seg := range Split(rel) {
			if n.children == nil {
				n.children = make(map[string]*assembleNode)
			}
			child, ok := n.children[seg]
			if !ok {
				child = &assembleNode{}
				n.children[seg] = child
			}
			n = child
		}
		n.value = raw
	}
	return root.flatten()
}

// Decompose flattens a JSON value into storage rows, the inverse of
// Assemble: objects become deep tree paths, one row per non-object leaf
// (key "" when the value itself is a scalar or array). Writing a whole
// object this way leaves every nested field addressable at its own
// path, which is how the remote store holds nested objects - a session
// rewrite that carries the votes subtree keeps sessions/{id}/votes
// readable and watchable. An empty object produces no rows: a node with
// no leaves does not exist.
func Decompose(raw json.RawMessage) map[string]json.RawMessage {
	rows := make(map[string]json.RawMessage)
	decompose(rows, "", raw)
	return rows
}

func decompose(rows map[string]json.RawMessage, rel string, raw json.RawMessage) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err == nil {
			for k, v := range obj {
				child := k
				if rel != "" {
					child = rel + "/" + k
				}
				decompose(rows, child, v)
			}
			return
		}
	}
	rows[rel] = raw
}

type assembleNode struct {
	value    json.RawMessage
	children map[string]*assembleNode
}

func (n *assembleNode) flatten() json.RawMessage {
	if len(n.children) == 0 {
		return n.value
	}
	merged := make(map[string]json.RawMessage)
	if n.value != nil {
		_ = json.Unmarshal(n.value, &merged)
	}
	for name, child := range n.children {
		if raw := child.flatten(); raw != nil {
			merged[name] = raw
		}
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return nil
	}
	return raw
}

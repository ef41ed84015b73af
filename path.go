package remap

import (
	"strings"
	"sync"
)

// FanOut is the segment suffix meaning "every element of this array".
const FanOut = "[]"

// Mode selects what [Resolve] returns for each match.
type Mode int

const (
	// Values returns the matched values.
	Values Mode = iota
	// Parents returns the object holding the final path key of each match,
	// repeated once per element when the final segment fans out.
	Parents
)

// Node is one match of a path: the object that holds Key, and the value
// found there. For a fan-out final segment Value is one array element and
// Parent is the array's owner.
type Node struct {
	Parent map[string]any
	Key    string
	Value  any
}

type segment struct {
	key    string
	fanOut bool
}

// segments caches parsed paths by their literal string. Paths come from
// static configuration so the cache is never invalidated.
var segments sync.Map

func parsePath(path string) []segment {
	if cached, ok := segments.Load(path); ok {
		return cached.([]segment)
	}
	parts := strings.Split(path, ".")
	segs := make([]segment, len(parts))
	for i, p := range parts {
		if strings.HasSuffix(p, FanOut) {
			segs[i] = segment{key: strings.TrimSuffix(p, FanOut), fanOut: true}
		} else {
			segs[i] = segment{key: p}
		}
	}
	segments.Store(path, segs)
	return segs
}

// Resolve evaluates path against doc. Missing keys, non-object items and
// empty arrays contribute nothing; they never cause an error. Values and
// Parents results for the same path and document have equal length and
// correspond index for index. An empty path resolves to doc itself.
func Resolve(doc any, path string, mode Mode) []any {
	if path == "" {
		return []any{doc}
	}
	nodes := ResolveNodes(doc, path)
	out := make([]any, len(nodes))
	for i, n := range nodes {
		if mode == Parents {
			out[i] = n.Parent
		} else {
			out[i] = n.Value
		}
	}
	return out
}

// ResolveNodes evaluates path against doc and returns every match together
// with the object that holds it, in traversal order.
func ResolveNodes(doc any, path string) []Node {
	if path == "" {
		parent, _ := doc.(map[string]any)
		return []Node{{Parent: parent, Value: doc}}
	}
	segs := parsePath(path)
	frontier := []any{doc}
	var nodes []Node
	for i, seg := range segs {
		nodes = expand(frontier, seg)
		if i == len(segs)-1 || len(nodes) == 0 {
			break
		}
		frontier = frontier[:0:0]
		for _, n := range nodes {
			frontier = append(frontier, n.Value)
		}
	}
	return nodes
}

func expand(items []any, seg segment) []Node {
	var out []Node
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		v, ok := obj[seg.key]
		if !ok {
			continue
		}
		if !seg.fanOut {
			out = append(out, Node{Parent: obj, Key: seg.key, Value: v})
			continue
		}
		switch elems := v.(type) {
		case nil:
		case []any:
			for _, e := range elems {
				out = append(out, Node{Parent: obj, Key: seg.key, Value: e})
			}
		case string:
			if elems != "" {
				out = append(out, Node{Parent: obj, Key: seg.key, Value: v})
			}
		case bool:
			if elems {
				out = append(out, Node{Parent: obj, Key: seg.key, Value: v})
			}
		default:
			// A lone value where an array was expected counts as one element.
			// Empty strings and false hold nothing, like nil.
			out = append(out, Node{Parent: obj, Key: seg.key, Value: v})
		}
	}
	return out
}

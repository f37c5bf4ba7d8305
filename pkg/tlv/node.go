package tlv

import "bytes"

// Node is one decoded data object.
//
// A node is either a leaf, whose Value is the payload, or a container, whose
// Children were successfully decoded from Value. Containers keep their original
// payload in Value; Encode ignores it and serializes Children instead.
// Constructed is advisory: a constructed tag whose value is not valid TLV is
// kept as a leaf with Constructed=false.
type Node struct {
	Tag         Tag
	Length      int
	Value       []byte
	Children    []Node
	Constructed bool

	// Raw is the value as decoded, used to tell edited nodes apart.
	Raw []byte
}

// IsContainer reports whether the node was split into children.
func (n Node) IsContainer() bool {
	return len(n.Children) > 0
}

// Modified reports whether Value differs from the decoded payload.
func (n Node) Modified() bool {
	return !bytes.Equal(n.Value, n.Raw)
}

// Walk visits nodes depth-first, parents before children. path holds the tags
// of the ancestors followed by the node's own tag. Returning false from fn
// skips the node's children.
func Walk(nodes []Node, fn func(path []Tag, n Node) bool) {
	walk(nil, nodes, fn)
}

func walk(parent []Tag, nodes []Node, fn func(path []Tag, n Node) bool) {
	for _, n := range nodes {
		path := append(append([]Tag(nil), parent...), n.Tag)
		if fn(path, n) && n.IsContainer() {
			walk(path, n.Children, fn)
		}
	}
}

// Find returns the first node with the given tag, depth-first.
func Find(nodes []Node, tag Tag) (Node, bool) {
	var (
		found Node
		ok    bool
	)
	Walk(nodes, func(_ []Tag, n Node) bool {
		if ok {
			return false
		}
		if n.Tag.Equal(tag) {
			found, ok = n, true
			return false
		}
		return true
	})
	return found, ok
}

// FindAll returns every node with the given tag, in depth-first order.
func FindAll(nodes []Node, tag Tag) []Node {
	var matches []Node
	Walk(nodes, func(_ []Tag, n Node) bool {
		if n.Tag.Equal(tag) {
			matches = append(matches, n)
		}
		return true
	})
	return matches
}

func clone(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return bytes.Clone(b)
}

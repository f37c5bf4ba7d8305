package tlv

// UpdateValue returns a rebuilt copy of nodes where every node carrying tag,
// at any depth, holds value. The input tree is left untouched.
//
// An updated node becomes a leaf: its former children are dropped and value is
// its payload. Ancestors get their Length recomputed from their new children.
func UpdateValue(nodes []Node, tag Tag, value []byte) []Node {
	if nodes == nil {
		return nil
	}

	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = updateNode(n, tag, value)
	}
	return out
}

func updateNode(n Node, tag Tag, value []byte) Node {
	n.Raw = clone(n.Raw)

	if n.Tag.Equal(tag) {
		n.Value = clone(value)
		n.Length = len(value)
		n.Children = nil
		return n
	}

	n.Value = clone(n.Value)
	if !n.IsContainer() {
		return n
	}

	n.Children = UpdateValue(n.Children, tag, value)
	n.Length = childrenSize(n.Children)
	return n
}

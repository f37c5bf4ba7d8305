package tlv

// ConstructedHint lets a tag dictionary override the constructed bit of the
// tag. known is false for tags the dictionary does not describe.
type ConstructedHint interface {
	Constructed(tag string) (constructed, known bool)
}

// BuildTree turns flat records into nodes, descending into constructed values.
// A nil hint means the tag's own constructed bit decides.
//
// If a constructed value does not decode as nested TLV, the node degrades to a
// primitive leaf holding the undecoded value. A container's Length is the size
// of its children as Encode writes them, which differs from the declared
// length when the input used non-minimal length fields.
func BuildTree(records []Record, hint ConstructedHint) []Node {
	if len(records) == 0 {
		return nil
	}

	nodes := make([]Node, 0, len(records))
	for _, rec := range records {
		nodes = append(nodes, buildNode(rec, hint))
	}
	return nodes
}

func buildNode(rec Record, hint ConstructedHint) Node {
	constructed := rec.Tag.IsConstructed()
	if hint != nil {
		if c, known := hint.Constructed(string(rec.Tag)); known {
			constructed = c
		}
	}

	node := Node{
		Tag:         rec.Tag,
		Length:      rec.Length,
		Value:       rec.Value,
		Constructed: constructed,
		Raw:         clone(rec.Value),
	}

	if !constructed || len(rec.Value) == 0 {
		return node
	}

	children, err := Parse(rec.Value, hint)
	if err != nil {
		node.Constructed = false
		return node
	}

	node.Children = children
	node.Length = childrenSize(children)
	return node
}

// Parse decodes data and builds the node tree in one step.
func Parse(data []byte, hint ConstructedHint) ([]Node, error) {
	records, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return BuildTree(records, hint), nil
}

// ParseHex is Parse over a hex string (whitespace allowed).
func ParseHex(s string, hint ConstructedHint) ([]Node, error) {
	data, err := FromHex(s)
	if err != nil {
		return nil, err
	}
	return Parse(data, hint)
}

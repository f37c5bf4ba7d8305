package tlv

import "github.com/moov-io/bertlv"

// ToPackets converts a node tree into moov-io/bertlv packets, so decoded trees
// can be fed to UnmarshalFromPackets. Containers carry their content in TLVs
// only.
func ToPackets(nodes []Node) []bertlv.TLV {
	if len(nodes) == 0 {
		return nil
	}

	packets := make([]bertlv.TLV, 0, len(nodes))
	for _, n := range nodes {
		p := bertlv.TLV{Tag: string(n.Tag)}
		if n.IsContainer() {
			p.TLVs = ToPackets(n.Children)
		} else {
			p.Value = clone(n.Value)
		}
		packets = append(packets, p)
	}
	return packets
}

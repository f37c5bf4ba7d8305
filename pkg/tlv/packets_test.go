package tlv

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/moov-io/bertlv"
)

func TestToPackets_InteropWithBERTLV(t *testing.T) {
	nodes, err := ParseHex(selectPPSE, nil)
	if err != nil {
		t.Fatalf("ParseHex failed: %v", err)
	}

	encoded, err := bertlv.Encode(ToPackets(nodes))
	if err != nil {
		t.Fatalf("bertlv.Encode failed: %v", err)
	}
	if got := ToHex(encoded); got != selectPPSE {
		t.Errorf("bertlv.Encode(ToPackets()) = %s, want %s", got, selectPPSE)
	}
}

func TestToPackets(t *testing.T) {
	nodes, err := Parse(Hex("A5 08", "88 01 01", "5F2D 02 656E"), nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := []bertlv.TLV{
		{Tag: "A5", TLVs: []bertlv.TLV{
			{Tag: "88", Value: []byte{0x01}},
			{Tag: "5F2D", Value: []byte("en")},
		}},
	}

	if diff := cmp.Diff(want, ToPackets(nodes)); diff != "" {
		t.Errorf("ToPackets mismatch (-want +got):\n%s", diff)
	}
}

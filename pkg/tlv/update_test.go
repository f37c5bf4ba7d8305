package tlv

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUpdateValue_PPSELanguage(t *testing.T) {
	original, err := ParseHex(selectPPSE, nil)
	if err != nil {
		t.Fatalf("ParseHex failed: %v", err)
	}
	before := Hex(selectPPSE)

	tests := []struct {
		name      string
		value     []byte
		want      string
		wantA5Len int
		want6FLen int
	}{
		{
			name:      "Same length (fr)",
			value:     Hex("6672"),
			want:      "6F1A840E325041592E5359532E4444463031A5088801025F2D026672",
			wantA5Len: 8,
			want6FLen: 0x1A,
		},
		{
			name:      "Longer value (enfr)",
			value:     Hex("656E6672"),
			want:      "6F1C840E325041592E5359532E4444463031A50A8801025F2D04656E6672",
			wantA5Len: 10,
			want6FLen: 0x1C,
		},
		{
			name:      "Empty value",
			value:     nil,
			want:      "6F18840E325041592E5359532E4444463031A5068801025F2D00",
			wantA5Len: 6,
			want6FLen: 0x18,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated := UpdateValue(original, "5F2D", tt.value)

			got, err := EncodeHex(updated)
			if err != nil {
				t.Fatalf("EncodeHex failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("EncodeHex() = %s, want %s", got, tt.want)
			}

			a5, _ := Find(updated, "A5")
			if a5.Length != tt.wantA5Len {
				t.Errorf("A5 length = %d, want %d", a5.Length, tt.wantA5Len)
			}
			if updated[0].Length != tt.want6FLen {
				t.Errorf("6F length = %d, want %d", updated[0].Length, tt.want6FLen)
			}

			sfiBefore, _ := Find(original, "88")
			sfiAfter, _ := Find(updated, "88")
			if diff := cmp.Diff(sfiBefore, sfiAfter); diff != "" {
				t.Errorf("Sibling 88 changed (-before +after):\n%s", diff)
			}

			lang, _ := Find(updated, "5F2D")
			if !lang.Modified() {
				t.Error("Updated node should report Modified()")
			}
		})
	}

	// The source tree is never mutated.
	after, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode(original) failed: %v", err)
	}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("Original tree was mutated (-before +after):\n%s", diff)
	}
}

func TestUpdateValue_AllOccurrences(t *testing.T) {
	nodes, err := ParseHex("70 08 88 01 01 A5 03 88 01 02", nil)
	if err != nil {
		t.Fatalf("ParseHex failed: %v", err)
	}

	updated := UpdateValue(nodes, "88", Hex("0304"))

	got, err := EncodeHex(updated)
	if err != nil {
		t.Fatalf("EncodeHex failed: %v", err)
	}

	want := "700A88020304A50488020304"
	if got != want {
		t.Errorf("EncodeHex() = %s, want %s", got, want)
	}
	if updated[0].Length != 10 {
		t.Errorf("70 length = %d, want 10", updated[0].Length)
	}
}

func TestUpdateValue_Container(t *testing.T) {
	nodes, err := ParseHex(selectPPSE, nil)
	if err != nil {
		t.Fatalf("ParseHex failed: %v", err)
	}

	updated := UpdateValue(nodes, "A5", Hex("880103"))

	a5, ok := Find(updated, "A5")
	if !ok {
		t.Fatal("A5 not found")
	}
	if a5.IsContainer() {
		t.Error("Updated container should become a leaf until re-decoded")
	}

	encoded, err := Encode(updated)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	reparsed, err := Parse(encoded, nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	sfi, ok := Find(reparsed, "88")
	if !ok || ToHex(sfi.Value) != "03" {
		t.Errorf("Re-decoded 88 = %X, want 03", sfi.Value)
	}
}

func TestUpdateValue_UnknownTag(t *testing.T) {
	nodes, err := ParseHex(selectPPSE, nil)
	if err != nil {
		t.Fatalf("ParseHex failed: %v", err)
	}

	updated := UpdateValue(nodes, "9F38", Hex("01"))
	if diff := cmp.Diff(nodes, updated); diff != "" {
		t.Errorf("Update of absent tag changed the tree (-want +got):\n%s", diff)
	}
}

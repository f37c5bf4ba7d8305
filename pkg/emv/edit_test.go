package emv

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/gregLibert/emv-workbench/pkg/tagdict"
	"github.com/gregLibert/emv-workbench/pkg/tlv"
)

func TestApplyEdit(t *testing.T) {
	dict := tagdict.Default()

	tests := []struct {
		name  string
		tag   string
		value string
		mode  InputMode
		want  string
	}{
		{
			name:  "Hex value, same length",
			tag:   "5F2D",
			value: "6672",
			mode:  InputHex,
			want:  "6F1A840E325041592E5359532E4444463031A5088801025F2D026672",
		},
		{
			name:  "ASCII value grows the ancestors",
			tag:   "5f2d",
			value: "enfr",
			mode:  InputASCII,
			want:  "6F1C840E325041592E5359532E4444463031A50A8801025F2D04656E6672",
		},
		{
			name:  "Decimal value",
			tag:   "88",
			value: "3",
			mode:  InputDecimal,
			want:  "6F1A840E325041592E5359532E4444463031A5088801035F2D02656E",
		},
		{
			name:  "Empty value",
			tag:   "5F2D",
			value: "",
			mode:  InputHex,
			want:  "6F18840E325041592E5359532E4444463031A5068801025F2D00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyEdit(selectPPSE, tt.tag, tt.value, tt.mode, dict)
			if err != nil {
				t.Fatalf("ApplyEdit failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ApplyEdit = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestApplyEdit_SiblingsUntouched(t *testing.T) {
	dict := tagdict.Default()
	before := parse(t, selectPPSE, dict)

	out, err := ApplyEdit(selectPPSE, "5F2D", "6672", InputHex, dict)
	if err != nil {
		t.Fatalf("ApplyEdit failed: %v", err)
	}
	after := parse(t, out, dict)

	sfiBefore, ok1 := tlv.Find(before, "88")
	sfiAfter, ok2 := tlv.Find(after, "88")
	if !ok1 || !ok2 {
		t.Fatal("Tag 88 missing")
	}
	if !bytes.Equal(sfiBefore.Value, sfiAfter.Value) {
		t.Errorf("Sibling 88 changed: %X -> %X", sfiBefore.Value, sfiAfter.Value)
	}

	lang, ok := tlv.Find(after, "5F2D")
	if !ok {
		t.Fatal("Tag 5F2D missing")
	}
	if got := FormatASCII(tlv.ToHex(lang.Value)); got != "fr" {
		t.Errorf("5F2D = %q, want fr", got)
	}
}

func TestApplyEdit_LengthFormBoundary(t *testing.T) {
	value := strings.Repeat("A", 200)

	out, err := ApplyEdit(selectPPSE, "5F2D", value, InputASCII, nil)
	if err != nil {
		t.Fatalf("ApplyEdit failed: %v", err)
	}

	// 5F2D 81C8, A5 81CF, 6F 81E2
	if !strings.HasPrefix(out, "6F81E2840E325041592E5359532E4444463031A581CF8801025F2D81C8") {
		t.Errorf("Unexpected headers: %s", out)
	}

	nodes := parse(t, out, nil)
	if len(nodes) != 1 || nodes[0].Length != 226 {
		t.Errorf("Expected a single 226 byte template, got %d nodes", len(nodes))
	}
}

func TestApplyEdit_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		tag     string
		value   string
		mode    InputMode
		wantErr error
	}{
		{"Tag absent from tree", selectPPSE, "9F37", "00", InputHex, ErrTagNotFound},
		{"Malformed tag", selectPPSE, "9F", "00", InputHex, tlv.ErrInvalidTag},
		{"Bad hex value", selectPPSE, "88", "0G", InputHex, tlv.ErrInvalidHex},
		{"Bad hex value is invalid input", selectPPSE, "88", "0G", InputHex, ErrInvalidInput},
		{"Negative decimal", selectPPSE, "88", "-5", InputDecimal, ErrInvalidInput},
		{"Unknown mode", selectPPSE, "88", "01", InputMode("base64"), ErrInvalidInput},
		{"Truncated source", "6F1A84", "84", "00", InputHex, tlv.ErrIncompleteValue},
		{"Source is not hex", "6F1Z", "6F", "00", InputHex, tlv.ErrInvalidHex},
		{"Value too long", selectPPSE, "84", strings.Repeat("00", 0x10000), InputHex, tlv.ErrValueTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ApplyEdit(tt.src, tt.tag, tt.value, tt.mode, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if out != "" {
				t.Errorf("Expected no output on error, got %s", out)
			}
		})
	}
}

func TestNormalizeInput(t *testing.T) {
	tests := []struct {
		value string
		mode  InputMode
		want  []byte
	}{
		{"65 6e", InputHex, []byte("en")},
		{"en", InputASCII, []byte("en")},
		{"256", InputDecimal, []byte{0x01, 0x00}},
	}

	for _, tt := range tests {
		got, err := NormalizeInput(tt.value, tt.mode)
		if err != nil {
			t.Errorf("NormalizeInput(%q, %s) failed: %v", tt.value, tt.mode, err)
			continue
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("NormalizeInput(%q, %s) = %X, want %X", tt.value, tt.mode, got, tt.want)
		}
	}

	if _, err := NormalizeInput("café", InputASCII); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for non ASCII text, got %v", err)
	}
}

func TestParseInputMode(t *testing.T) {
	m, err := ParseInputMode("ASCII")
	if err != nil {
		t.Fatalf("ParseInputMode failed: %v", err)
	}
	if m != InputASCII {
		t.Errorf("ParseInputMode(ASCII) = %s, want %s", m, InputASCII)
	}

	if _, err := ParseInputMode("bcd"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

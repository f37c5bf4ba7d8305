package tlv

import (
	"bytes"
	"errors"
	"testing"
)

func TestHex(t *testing.T) {
	tests := []struct {
		name      string
		inputs    []string
		want      []byte
		wantPanic bool
	}{
		{
			name:   "Simple Join",
			inputs: []string{"00", "A4"},
			want:   []byte{0x00, 0xA4},
		},
		{
			name:   "With Spaces",
			inputs: []string{"00 A4", " 04 00 "},
			want:   []byte{0x00, 0xA4, 0x04, 0x00},
		},
		{
			name:   "Mixed Case",
			inputs: []string{"ca", "FE"},
			want:   []byte{0xCA, 0xFE},
		},
		{
			name:      "Invalid Hex",
			inputs:    []string{"ZZ"},
			wantPanic: true,
		},
		{
			name:      "Odd Length",
			inputs:    []string{"123"},
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if (r != nil) != tt.wantPanic {
					t.Errorf("Hex() panic = %v, wantPanic %v", r, tt.wantPanic)
				}
			}()

			got := Hex(tt.inputs...)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Hex() = %X, want %X", got, tt.want)
			}
		})
	}
}

func TestFromHex(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		want       []byte
		wantErr    error
		wantOffset int
	}{
		{name: "Compact", input: "6F1A", want: []byte{0x6F, 0x1A}},
		{name: "Whitespace and lowercase", input: " 9f 37\n04\t", want: []byte{0x9F, 0x37, 0x04}},
		{name: "Empty", input: "", want: []byte{}},
		{name: "Invalid character", input: "6F 1Z", wantErr: ErrInvalidHex, wantOffset: 4},
		{name: "Odd length", input: "6F 1", wantErr: ErrOddLength, wantOffset: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromHex(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FromHex() error = %v, want %v", err, tt.wantErr)
				}
				var perr *ParseError
				if !errors.As(err, &perr) || perr.Offset != tt.wantOffset {
					t.Errorf("FromHex() offset = %+v, want %d", perr, tt.wantOffset)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromHex() unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("FromHex() = %X, want %X", got, tt.want)
			}
		})
	}
}

func TestToHex(t *testing.T) {
	if got := ToHex([]byte{0x5f, 0x2d, 0x0a}); got != "5F2D0A" {
		t.Errorf("ToHex() = %s, want 5F2D0A", got)
	}
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		input           string
		want            Tag
		wantErr         bool
		wantConstructed bool
		wantClass       Class
	}{
		{input: "6f", want: "6F", wantConstructed: true, wantClass: ClassApplication},
		{input: "9F 37", want: "9F37", wantClass: ClassContextSpecific},
		{input: "BF0C", want: "BF0C", wantConstructed: true, wantClass: ClassContextSpecific},
		{input: "DF8101", want: "DF8101", wantClass: ClassPrivate},
		{input: "04", want: "04", wantClass: ClassUniversal},
		{input: "9F", wantErr: true},
		{input: "8401", wantErr: true},
		{input: "", wantErr: true},
		{input: "G1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTag(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTag(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTag) {
					t.Errorf("ParseTag(%q) error should wrap ErrInvalidTag, got %v", tt.input, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseTag(%q) = %s, want %s", tt.input, got, tt.want)
			}
			if got.IsConstructed() != tt.wantConstructed {
				t.Errorf("%s.IsConstructed() = %v, want %v", got, got.IsConstructed(), tt.wantConstructed)
			}
			if got.Class() != tt.wantClass {
				t.Errorf("%s.Class() = %s, want %s", got, got.Class(), tt.wantClass)
			}
		})
	}
}

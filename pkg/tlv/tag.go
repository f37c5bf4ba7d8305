package tlv

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gregLibert/emv-workbench/pkg/bits"
)

// Tag is the uppercase hex form of a BER-TLV tag field (e.g. "6F", "9F37").
type Tag string

// Class is the tag class carried by bits 8-7 of the first tag byte.
type Class byte

const (
	ClassUniversal       Class = 0b00
	ClassApplication     Class = 0b01
	ClassContextSpecific Class = 0b10
	ClassPrivate         Class = 0b11
)

func (c Class) String() string {
	switch c {
	case ClassUniversal:
		return "Universal"
	case ClassApplication:
		return "Application"
	case ClassContextSpecific:
		return "Context-specific"
	case ClassPrivate:
		return "Private"
	default:
		return fmt.Sprintf("Class(%d)", byte(c))
	}
}

// NewTag builds a Tag from its raw bytes.
func NewTag(raw []byte) Tag {
	return Tag(ToHex(raw))
}

// ParseTag normalizes a textual tag ("9f 37", "5f2d") and checks that it is a
// single well-formed BER tag.
func ParseTag(s string) (Tag, error) {
	raw, err := FromHex(s)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidTag, s, err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: empty", ErrInvalidTag)
	}

	tag, next, err := readTag(raw, 0)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidTag, s, err)
	}
	if next != len(raw) {
		return "", fmt.Errorf("%w %q: trailing bytes after tag %s", ErrInvalidTag, s, tag)
	}
	return tag, nil
}

// Bytes returns the raw tag bytes, or nil if the tag is not valid hex.
func (t Tag) Bytes() []byte {
	raw, err := hex.DecodeString(string(t))
	if err != nil {
		return nil
	}
	return raw
}

// Equal compares two tags ignoring hex case.
func (t Tag) Equal(other Tag) bool {
	return strings.EqualFold(string(t), string(other))
}

// IsConstructed reports whether bit 6 (0x20) of the first tag byte is set.
func (t Tag) IsConstructed() bool {
	raw := t.Bytes()
	if len(raw) == 0 {
		return false
	}
	return bits.IsSet(raw[0], 6)
}

// Class returns the tag class.
func (t Tag) Class() Class {
	raw := t.Bytes()
	if len(raw) == 0 {
		return ClassUniversal
	}
	return Class(bits.GetRange(raw[0], 8, 7))
}

func (t Tag) String() string {
	return string(t)
}

// readTag reads one tag starting at offset. When bits 5-1 of the first byte
// are all set, the tag continues until a byte with b8 cleared.
func readTag(data []byte, offset int) (Tag, int, error) {
	if offset >= len(data) {
		return "", 0, &ParseError{Offset: offset, Err: ErrIncompleteTag}
	}

	pos := offset
	first := data[pos]
	pos++

	if bits.GetRange(first, 5, 1) == 0x1F {
		for {
			if pos >= len(data) {
				return "", 0, &ParseError{
					Offset: offset,
					Err:    ErrIncompleteTag,
					Detail: fmt.Sprintf("tag %X continues past end of data", data[offset:pos]),
				}
			}
			b := data[pos]
			pos++
			if !bits.IsSet(b, 8) {
				break
			}
		}
	}

	return NewTag(data[offset:pos]), pos, nil
}

package tlv

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// Hex constructs a byte slice from a series of hex strings.
// It panics on malformed input and is meant for fixtures and constants.
func Hex(parts ...string) []byte {
	fullHex := strings.Join(parts, "")
	// Clean up spaces to allow format like "00 A4 04 00"
	cleanHex := strings.ReplaceAll(fullHex, " ", "")

	data, err := hex.DecodeString(cleanHex)
	if err != nil {
		panic(fmt.Sprintf("invalid input '%s': %v", cleanHex, err))
	}
	return data
}

// FromHex converts user supplied hex text into bytes.
// Any whitespace is ignored. The returned *ParseError points at the offending
// character of s, or at the dangling digit for odd-length input.
func FromHex(s string) ([]byte, error) {
	var sb strings.Builder
	sb.Grow(len(s))

	lastDigit := 0
	for i, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if !isHexDigit(r) {
			return nil, &ParseError{Offset: i, Err: ErrInvalidHex, Detail: fmt.Sprintf("%q", r)}
		}
		sb.WriteRune(r)
		lastDigit = i
	}

	clean := sb.String()
	if len(clean)%2 != 0 {
		return nil, &ParseError{Offset: lastDigit, Err: ErrOddLength, Detail: fmt.Sprintf("%d digits", len(clean))}
	}

	return hex.DecodeString(clean)
}

// ToHex renders bytes as contiguous uppercase hex, the canonical text form.
func ToHex(data []byte) string {
	return strings.ToUpper(hex.EncodeToString(data))
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

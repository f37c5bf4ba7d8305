package emv

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/gregLibert/emv-workbench/pkg/bits"
	"github.com/gregLibert/emv-workbench/pkg/tagdict"
	"github.com/gregLibert/emv-workbench/pkg/tlv"
)

// VALUE FORMATTING
//
// Formatters take the hex form of a value and return a display projection.
// They never fail: input that cannot be rendered in the requested form yields
// an empty string.

// DisplayMode selects a value projection.
type DisplayMode string

const (
	DisplaySmart   DisplayMode = "smart"
	DisplayHex     DisplayMode = "hex"
	DisplayASCII   DisplayMode = "ascii"
	DisplayDecimal DisplayMode = "decimal"
	DisplayBCD     DisplayMode = "bcd"
	DisplayDate    DisplayMode = "date"
)

// ParseDisplayMode accepts the mode names used on the command line.
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch m := DisplayMode(strings.ToLower(strings.TrimSpace(s))); m {
	case DisplaySmart, DisplayHex, DisplayASCII, DisplayDecimal, DisplayBCD, DisplayDate:
		return m, nil
	default:
		return "", fmt.Errorf("unknown display mode %q", s)
	}
}

// Tags whose value is a YYMMDD date regardless of the dictionary format.
var dateTags = map[tlv.Tag]bool{
	"5F24": true, // Application Expiration Date
	"5F25": true, // Application Effective Date
}

// Format renders hexValue in the given mode. tag and dict are only consulted
// by DisplaySmart.
func Format(mode DisplayMode, tag tlv.Tag, hexValue string, dict tagdict.Dictionary) string {
	switch mode {
	case DisplayHex:
		return FormatHex(hexValue)
	case DisplayASCII:
		return FormatASCII(hexValue)
	case DisplayDecimal:
		return FormatDecimal(hexValue)
	case DisplayBCD:
		return FormatBCD(hexValue)
	case DisplayDate:
		return FormatDate(hexValue)
	default:
		return FormatSmart(tag, hexValue, dict)
	}
}

// FormatHex renders uppercase byte pairs separated by spaces: "6F 1A 84".
func FormatHex(hexValue string) string {
	data, err := tlv.FromHex(hexValue)
	if err != nil {
		return ""
	}

	pairs := make([]string, len(data))
	for i, b := range data {
		pairs[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(pairs, " ")
}

// FormatASCII keeps printable characters (0x20-0x7E) and drops everything
// else. The projection is lossy.
func FormatASCII(hexValue string) string {
	data, err := tlv.FromHex(hexValue)
	if err != nil {
		return ""
	}

	var sb strings.Builder
	for _, b := range data {
		if isPrintable(b) {
			sb.WriteByte(b)
		}
	}
	return sb.String()
}

// FormatDecimal reads the whole value as one unsigned big-endian integer.
func FormatDecimal(hexValue string) string {
	n, ok := parseBigHex(hexValue)
	if !ok {
		return ""
	}
	return n.String()
}

// FormatBCD renders each nibble as a digit and trims trailing 'F' padding.
// Nibbles above 9 are kept as their hex digit.
func FormatBCD(hexValue string) string {
	data, err := tlv.FromHex(hexValue)
	if err != nil {
		return ""
	}

	var sb strings.Builder
	for _, b := range data {
		sb.WriteString(nibbleDigit(bits.HighNibble(b)))
		sb.WriteString(nibbleDigit(bits.LowNibble(b)))
	}
	return strings.TrimRight(sb.String(), "F")
}

// FormatDate renders YYMMDD as 20YY-MM-DD and YYMM as 20YY-MM. Any other
// length, or a non decimal digit, yields "".
func FormatDate(hexValue string) string {
	digits := FormatBCD(hexValue)
	if len(digits) != len(normalizeHex(hexValue)) {
		return ""
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return ""
		}
	}

	switch len(digits) {
	case 6:
		return fmt.Sprintf("20%s-%s-%s", digits[0:2], digits[2:4], digits[4:6])
	case 4:
		return fmt.Sprintf("20%s-%s", digits[0:2], digits[2:4])
	default:
		return ""
	}
}

// FormatSmart picks a projection from the dictionary. The expiration and
// effective date tags always render as dates; otherwise the format string is
// matched against BCD, ASCII and numeric in that order, falling back to hex.
func FormatSmart(tag tlv.Tag, hexValue string, dict tagdict.Dictionary) string {
	if dateTags[tlv.Tag(strings.ToUpper(string(tag)))] {
		if date := FormatDate(hexValue); date != "" {
			return date
		}
		return FormatHex(hexValue)
	}

	var format string
	if dict != nil {
		if info, ok := dict.Lookup(string(tag)); ok {
			format = strings.ToLower(info.Format)
		}
	}

	switch {
	case strings.Contains(format, "bcd"):
		return FormatBCD(hexValue)
	case strings.Contains(format, "ascii"):
		return FormatASCII(hexValue)
	case strings.Contains(format, "numeric"):
		return FormatDecimal(hexValue)
	default:
		return FormatHex(hexValue)
	}
}

// ASCIIToHex maps each byte of s to its uppercase hex pair.
func ASCIIToHex(s string) string {
	return tlv.ToHex([]byte(s))
}

// DecimalToHex converts a non-negative decimal integer to uppercase hex,
// left padded with a zero to an even number of digits.
func DecimalToHex(s string) (string, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || n.Sign() < 0 {
		return "", fmt.Errorf("%w: %q is not a non-negative decimal integer", ErrInvalidInput, s)
	}

	h := strings.ToUpper(n.Text(16))
	if len(h)%2 != 0 {
		h = "0" + h
	}
	return h, nil
}

func parseBigHex(hexValue string) (*big.Int, bool) {
	h := normalizeHex(hexValue)
	if h == "" {
		return nil, false
	}
	return new(big.Int).SetString(h, 16)
}

func normalizeHex(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func nibbleDigit(n byte) string {
	return fmt.Sprintf("%X", n)
}

func isPrintable(b byte) bool {
	return b >= 0x20 && b <= 0x7E
}

package emv

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gregLibert/emv-workbench/pkg/tlv"
)

var (
	ErrTagNotFound  = errors.New("tag not found in tree")
	ErrInvalidInput = errors.New("invalid input value")
)

// InputMode is the notation an edited value is typed in.
type InputMode string

const (
	InputHex     InputMode = "hex"
	InputASCII   InputMode = "ascii"
	InputDecimal InputMode = "decimal"
)

// ParseInputMode accepts the mode names used on the command line.
func ParseInputMode(s string) (InputMode, error) {
	switch m := InputMode(strings.ToLower(strings.TrimSpace(s))); m {
	case InputHex, InputASCII, InputDecimal:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown input mode %q", ErrInvalidInput, s)
	}
}

// NormalizeInput converts value, written in mode, to raw bytes.
func NormalizeInput(value string, mode InputMode) ([]byte, error) {
	switch mode {
	case InputHex:
		data, err := tlv.FromHex(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return data, nil

	case InputASCII:
		for i := 0; i < len(value); i++ {
			if value[i] > 0x7F {
				return nil, fmt.Errorf("%w: non-ASCII byte %02X at position %d", ErrInvalidInput, value[i], i)
			}
		}
		return []byte(value), nil

	case InputDecimal:
		h, err := DecimalToHex(value)
		if err != nil {
			return nil, err
		}
		return tlv.FromHex(h)

	default:
		return nil, fmt.Errorf("%w: unknown input mode %q", ErrInvalidInput, mode)
	}
}

// ApplyEdit replaces the value of every tag occurrence in src and returns the
// re-encoded tree as uppercase hex. src is not otherwise modified: untouched
// nodes encode to the same bytes, and only the lengths of the edited nodes'
// ancestors change.
func ApplyEdit(src string, tag string, value string, mode InputMode, hint tlv.ConstructedHint) (string, error) {
	nodes, err := tlv.ParseHex(src, hint)
	if err != nil {
		return "", fmt.Errorf("failed to decode source: %w", err)
	}

	target, err := tlv.ParseTag(tag)
	if err != nil {
		return "", err
	}
	if _, ok := tlv.Find(nodes, target); !ok {
		return "", fmt.Errorf("%w: %s", ErrTagNotFound, target)
	}

	data, err := NormalizeInput(value, mode)
	if err != nil {
		return "", err
	}

	out, err := tlv.EncodeHex(tlv.UpdateValue(nodes, target, data))
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", target, err)
	}
	return out, nil
}

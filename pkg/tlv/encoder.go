package tlv

import (
	"bytes"
	"fmt"
)

// EncodeLength returns the minimal BER length field for n value bytes:
// short form below 0x80, then '81 XX' and '82 XX XX'.
func EncodeLength(n int) ([]byte, error) {
	switch {
	case n < 0:
		return nil, fmt.Errorf("negative length %d", n)
	case n < 0x80:
		return []byte{byte(n)}, nil
	case n < 0x100:
		return []byte{0x81, byte(n)}, nil
	case n < 0x10000:
		return []byte{0x82, byte(n >> 8), byte(n)}, nil
	default:
		return nil, fmt.Errorf("%w: %d bytes", ErrValueTooLong, n)
	}
}

// Encode serializes nodes back to BER-TLV. Lengths are recomputed from the
// current values, and containers are rebuilt from their children rather than
// from their stored Value. Nothing is returned on error.
func Encode(nodes []Node) ([]byte, error) {
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := encodeNode(&buf, n); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// EncodeHex is Encode returning the canonical uppercase hex form.
func EncodeHex(nodes []Node) (string, error) {
	data, err := Encode(nodes)
	if err != nil {
		return "", err
	}
	return ToHex(data), nil
}

func encodeNode(buf *bytes.Buffer, n Node) error {
	tag := n.Tag.Bytes()
	if len(tag) == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidTag, string(n.Tag))
	}

	value := n.Value
	if n.Constructed && n.IsContainer() {
		var err error
		if value, err = Encode(n.Children); err != nil {
			return fmt.Errorf("tag %s: %w", n.Tag, err)
		}
	}

	length, err := EncodeLength(len(value))
	if err != nil {
		return fmt.Errorf("tag %s: %w", n.Tag, err)
	}

	buf.Write(tag)
	buf.Write(length)
	buf.Write(value)
	return nil
}

// encodedSize is the number of bytes Encode would produce for n, assuming it
// encodes successfully.
func encodedSize(n Node) int {
	valueLen := len(n.Value)
	if n.Constructed && n.IsContainer() {
		valueLen = childrenSize(n.Children)
	}
	return len(n.Tag)/2 + lengthFieldSize(valueLen) + valueLen
}

func childrenSize(nodes []Node) int {
	total := 0
	for _, c := range nodes {
		total += encodedSize(c)
	}
	return total
}

func lengthFieldSize(n int) int {
	size := 1
	if n >= 0x80 {
		for ; n > 0; n >>= 8 {
			size++
		}
	}
	return size
}

package tlv

import (
	"fmt"

	"github.com/gregLibert/emv-workbench/pkg/bits"
)

// BER-TLV DECODING (ISO/IEC 7816-4 Annex D, EMV Book 3 Annex B):
//
// Each data object is a Tag field, a Length field and a Value field.
//
// TAG:
//   - Bits 5-1 of the first byte equal to '11111' announce subsequent tag bytes.
//   - Subsequent bytes carry b8=1 while more bytes follow, b8=0 on the last one.
//     Example: '9F 37' is a single two-byte tag.
//
// LENGTH:
//   - Short form: b8=0, the byte itself is the length (0 to 127).
//   - Long form: b8=1, bits 7-1 give the number of subsequent length bytes,
//     read big-endian. '80' (indefinite length) is rejected.

// maxLengthBytes caps the long form so a length always fits in 32 bits.
const maxLengthBytes = 4

// Record is one flat tag-length-value triplet with its position in the
// decoded buffer. Value aliases nothing: it is a private copy.
type Record struct {
	Tag        Tag
	Length     int
	Value      []byte
	Offset     int
	NextOffset int
}

// Decode splits data into consecutive records, from offset 0 until the buffer
// is exhausted. Constructed values are not descended into (see BuildTree).
// On failure no records are returned, only a *ParseError.
func Decode(data []byte) ([]Record, error) {
	var records []Record

	offset := 0
	for offset < len(data) {
		rec, err := decodeRecord(data, offset)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		offset = rec.NextOffset
	}

	return records, nil
}

// DecodeHex is Decode over a hex string (whitespace allowed).
func DecodeHex(s string) ([]Record, error) {
	data, err := FromHex(s)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func decodeRecord(data []byte, offset int) (Record, error) {
	tag, pos, err := readTag(data, offset)
	if err != nil {
		return Record{}, err
	}

	length, pos, err := readLength(data, pos)
	if err != nil {
		return Record{}, err
	}

	if remaining := len(data) - pos; uint64(remaining) < length {
		return Record{}, &ParseError{
			Offset: pos,
			Err:    ErrIncompleteValue,
			Detail: fmt.Sprintf("tag %s needs %d bytes, %d available", tag, length, remaining),
		}
	}

	end := pos + int(length)
	return Record{
		Tag:        tag,
		Length:     int(length),
		Value:      clone(data[pos:end]),
		Offset:     offset,
		NextOffset: end,
	}, nil
}

func readLength(data []byte, pos int) (uint64, int, error) {
	if pos >= len(data) {
		return 0, 0, &ParseError{Offset: pos, Err: ErrIncompleteLength}
	}

	first := data[pos]
	if !bits.IsSet(first, 8) {
		return uint64(first), pos + 1, nil
	}

	count := int(bits.GetRange(first, 7, 1))
	switch {
	case count == 0:
		return 0, 0, &ParseError{Offset: pos, Err: ErrIndefiniteLength}
	case count > maxLengthBytes:
		return 0, 0, &ParseError{
			Offset: pos,
			Err:    ErrLengthTooLong,
			Detail: fmt.Sprintf("%d length bytes, max %d", count, maxLengthBytes),
		}
	case pos+1+count > len(data):
		return 0, 0, &ParseError{
			Offset: pos,
			Err:    ErrIncompleteLength,
			Detail: fmt.Sprintf("%d length bytes announced, %d available", count, len(data)-pos-1),
		}
	}

	var length uint64
	for _, b := range data[pos+1 : pos+1+count] {
		length = length<<8 | uint64(b)
	}

	return length, pos + 1 + count, nil
}

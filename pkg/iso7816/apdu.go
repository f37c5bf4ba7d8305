package iso7816

import (
	"errors"
	"fmt"

	"github.com/gregLibert/emv-workbench/pkg/tlv"
)

// RESPONSE APDU (R-APDU):
// A response sent by the card consists of an optional Body and a mandatory Trailer.
//
// 1. Body (Data Field):
//   - Variable length sequence of bytes containing the response data.
//
// 2. Trailer (Status Word):
//   - SW1 (1 byte): Command processing status (High byte).
//   - SW2 (1 byte): Command processing qualification (Low byte).
//   - Example: 0x9000 indicates success.

// TrailerLength is the size of the SW1 SW2 trailer.
const TrailerLength = 2

var ErrResponseTooShort = errors.New("response too short")

// ResponseAPDU represents the reply from the card (R-APDU).
type ResponseAPDU struct {
	Data   []byte
	Status StatusWord
}

// ParseResponseAPDU splits raw bytes received from the card into data and
// status. The input must contain at least 2 bytes (SW1, SW2). Data is a copy.
func ParseResponseAPDU(raw []byte) (*ResponseAPDU, error) {
	if len(raw) < TrailerLength {
		return nil, fmt.Errorf("%w: length %d", ErrResponseTooShort, len(raw))
	}

	indexSW1 := len(raw) - TrailerLength
	var data []byte
	if indexSW1 > 0 {
		data = append([]byte(nil), raw[:indexSW1]...)
	}

	return &ResponseAPDU{
		Data:   data,
		Status: NewStatusWord(raw[indexSW1], raw[indexSW1+1]),
	}, nil
}

// ParseResponseAPDUHex is ParseResponseAPDU over a hex dump.
func ParseResponseAPDUHex(s string) (*ResponseAPDU, error) {
	raw, err := tlv.FromHex(s)
	if err != nil {
		return nil, err
	}
	return ParseResponseAPDU(raw)
}

// Bytes re-assembles the response, trailer last.
func (r *ResponseAPDU) Bytes() []byte {
	out := make([]byte, 0, len(r.Data)+TrailerLength)
	out = append(out, r.Data...)
	return append(out, r.Status.SW1(), r.Status.SW2())
}

// String returns a readable representation of the response.
func (r *ResponseAPDU) String() string {
	return fmt.Sprintf("Data (%d bytes) | Status: %s", len(r.Data), r.Status.Verbose())
}

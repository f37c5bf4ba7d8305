package iso7816

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/gregLibert/emv-workbench/pkg/tlv"
)

func TestParseResponseAPDU(t *testing.T) {
	// Raw: 01 02 03 (Data) | 90 00 (SW)
	raw, _ := hex.DecodeString("0102039000")
	resp, err := ParseResponseAPDU(raw)

	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(resp.Data) != 3 {
		t.Errorf("Wrong data length: got %d, want 3", len(resp.Data))
	}
	if resp.Status != SW_NO_ERROR {
		t.Errorf("Wrong status: got %04X, want %04X", uint16(resp.Status), uint16(SW_NO_ERROR))
	}

	raw[0] = 0xFF
	if resp.Data[0] != 0x01 {
		t.Error("Data must not alias the input buffer")
	}

	if got := resp.Bytes(); !bytes.Equal(got, []byte{0x01, 0x02, 0x03, 0x90, 0x00}) {
		t.Errorf("Bytes() = %X", got)
	}
}

func TestParseResponseAPDU_TrailerOnly(t *testing.T) {
	resp, err := ParseResponseAPDU([]byte{0x6A, 0x82})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if resp.Data != nil {
		t.Errorf("Expected no data, got %X", resp.Data)
	}
	if !resp.Status.IsError() {
		t.Errorf("Expected an error status, got %s", resp.Status.Verbose())
	}
	if !strings.Contains(resp.String(), "Data (0 bytes) | Status: [6A82] SW_ERR_FILE_NOT_FOUND") {
		t.Errorf("String() = %q", resp.String())
	}
}

func TestParseResponseAPDU_TooShort(t *testing.T) {
	// Only 1 byte, should fail
	raw := []byte{0x90}
	_, err := ParseResponseAPDU(raw)

	if !errors.Is(err, ErrResponseTooShort) {
		t.Errorf("Expected ErrResponseTooShort, got %v", err)
	}
}

func TestParseResponseAPDUHex(t *testing.T) {
	resp, err := ParseResponseAPDUHex("6F1A840E325041592E5359532E4444463031A5088801025F2D02656E 9000")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	nodes, err := tlv.Parse(resp.Data, nil)
	if err != nil {
		t.Fatalf("Data is not TLV: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Tag != "6F" {
		t.Errorf("Expected a single 6F template, got %+v", nodes)
	}

	if _, err := ParseResponseAPDUHex("90 0"); !errors.Is(err, tlv.ErrOddLength) {
		t.Errorf("Expected ErrOddLength, got %v", err)
	}
}

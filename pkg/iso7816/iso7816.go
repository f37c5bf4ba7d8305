/*
Package iso7816 interprets card responses according to ISO/IEC 7816-4.

A Response APDU (R-APDU) is an optional data field followed by a mandatory
2-byte trailer, the Status Word (SW1 SW2). The data field is usually a BER-TLV
structure (an FCI template, a record) that can be handed to the tlv package
once the trailer has been split off.

# Status Words

  - 0x9000: Success (OK).
  - 0x61XX: Success, but response data is still available (XX bytes).
  - 0x62XX, 0x63XX: Warnings.
  - 0x64XX to 0x6FXX: Execution and checking errors.

# Usage Example

	resp, err := iso7816.ParseResponseAPDU(raw)
	if err != nil {
	    log.Fatal(err)
	}

	if !resp.Status.IsSuccess() {
	    log.Fatalf("card refused the command: %s", resp.Status.Verbose())
	}

	nodes, err := tlv.Parse(resp.Data, tagdict.Default())
*/
package iso7816

package emv

import (
	"fmt"
	"strings"

	"github.com/gregLibert/emv-workbench/pkg/bits"
	"github.com/gregLibert/emv-workbench/pkg/tagdict"
	"github.com/gregLibert/emv-workbench/pkg/tlv"
)

// TAG COMPLIANCE
//
// Every node of a tree is checked against the dictionary. Findings are data:
// an invalid tag produces a result with Valid=false, never an error, and the
// walk never stops early.

const (
	msgUnknownTag        = "Unknown tag"
	msgCriticalEmpty     = "Critical EMV tag cannot be empty"
	msgValid             = "Valid EMV tag structure and format"
	msgConstructionFault = "Tag construction mismatch"
)

// ValidationResult is the finding for one node.
type ValidationResult struct {
	Tag     tlv.Tag
	Valid   bool
	Warning bool
	Message string

	// Suggestions are remediation hints for failing or unknown tags.
	Suggestions []string

	// Path is the slash-separated chain of tags from the root, e.g. "6F/A5/88".
	Path string
	// Index is the node's position in depth-first order.
	Index int
}

func (r ValidationResult) String() string {
	status := "OK"
	switch {
	case !r.Valid:
		status = "ERROR"
	case r.Warning:
		status = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s", status, r.Path, r.Message)
}

// Validate checks every node, parents before children, and returns one result
// per node.
func Validate(nodes []tlv.Node, dict tagdict.Dictionary) []ValidationResult {
	var results []ValidationResult
	tlv.Walk(nodes, func(path []tlv.Tag, n tlv.Node) bool {
		res := validateNode(n, dict)
		res.Path = joinPath(path)
		res.Index = len(results)
		results = append(results, res)
		return true
	})
	return results
}

func validateNode(n tlv.Node, dict tagdict.Dictionary) ValidationResult {
	res := ValidationResult{Tag: n.Tag}

	var (
		info  tagdict.TagInfo
		known bool
	)
	if dict != nil {
		info, known = dict.Lookup(string(n.Tag))
	}

	switch {
	case !known:
		res.Valid = true
		res.Warning = true
		res.Message = msgUnknownTag
		res.Suggestions = []string{
			"Check the tag identifier for typos",
			"Proprietary tags are legal but cannot be checked against the EMV dictionary",
		}

	case info.Critical && len(n.Value) == 0 && !n.IsContainer():
		res.Message = msgCriticalEmpty
		res.Suggestions = append([]string{
			fmt.Sprintf("Provide a value for %s", info.Name),
		}, info.Constraints...)

	case info.Constructed != n.Constructed:
		res.Message = fmt.Sprintf("%s: expected %s, found %s",
			msgConstructionFault, construction(info.Constructed), construction(n.Constructed))
		res.Suggestions = constructionSuggestions(info, n)

	case !checkFormat(info.Format, n.Value):
		res.Message = fmt.Sprintf("Invalid format for %s data", info.Format)
		res.Suggestions = append(formatSuggestions(info.Format), info.Constraints...)

	default:
		res.Valid = true
		res.Message = msgValid
	}

	return res
}

// checkFormat applies the check matching the declared format. Empty values
// and formats without a check are accepted.
func checkFormat(format string, value []byte) bool {
	if len(value) == 0 {
		return true
	}

	f := strings.ToLower(format)
	switch {
	case strings.Contains(f, "bcd"):
		return isBCD(value)
	case isTextFormat(f):
		return isPrintableText(value)
	case strings.Contains(f, "numeric"):
		_, ok := parseBigHex(tlv.ToHex(value))
		return ok
	default:
		return true
	}
}

func isTextFormat(f string) bool {
	return strings.Contains(f, "ascii") ||
		strings.Contains(f, "alphanumeric") ||
		strings.Contains(f, "text")
}

// isBCD rejects any nibble above 9, including 'F' padding.
func isBCD(value []byte) bool {
	for _, b := range value {
		if !bits.IsDecimalNibble(bits.HighNibble(b)) || !bits.IsDecimalNibble(bits.LowNibble(b)) {
			return false
		}
	}
	return true
}

func isPrintableText(value []byte) bool {
	for _, b := range value {
		if !isPrintable(b) {
			return false
		}
	}
	return true
}

func formatSuggestions(format string) []string {
	f := strings.ToLower(format)
	switch {
	case strings.Contains(f, "bcd"):
		return []string{"Use only decimal digits 0-9 in each nibble"}
	case isTextFormat(f):
		return []string{"Use printable ASCII characters only (0x20-0x7E)"}
	case strings.Contains(f, "numeric"):
		return []string{"Provide the value as an even number of hex digits"}
	default:
		return nil
	}
}

func constructionSuggestions(info tagdict.TagInfo, n tlv.Node) []string {
	if info.Constructed {
		return []string{
			fmt.Sprintf("%s (%s) is a template: its value must be a sequence of TLV objects", info.Name, info.Tag),
		}
	}
	return []string{
		fmt.Sprintf("%s (%s) is a primitive data object: nested TLV is not expected", info.Name, n.Tag),
	}
}

func construction(constructed bool) string {
	if constructed {
		return "constructed"
	}
	return "primitive"
}

func joinPath(path []tlv.Tag) string {
	parts := make([]string, len(path))
	for i, t := range path {
		parts[i] = string(t)
	}
	return strings.Join(parts, "/")
}

// Counts totals a validation pass.
type Counts struct {
	Total    int
	Valid    int
	Warnings int
	Errors   int
}

// Summary counts results. Valid excludes warnings.
func Summary(results []ValidationResult) Counts {
	c := Counts{Total: len(results)}
	for _, r := range results {
		switch {
		case !r.Valid:
			c.Errors++
		case r.Warning:
			c.Warnings++
		default:
			c.Valid++
		}
	}
	return c
}

func (c Counts) String() string {
	return fmt.Sprintf("%d checked: %d valid, %d warnings, %d errors", c.Total, c.Valid, c.Warnings, c.Errors)
}

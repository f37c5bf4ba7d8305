package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/gregLibert/emv-workbench/pkg/emv"
	"github.com/gregLibert/emv-workbench/pkg/tagdict"
	"github.com/gregLibert/emv-workbench/pkg/tlv"
	"github.com/gregLibert/emv-workbench/pkg/workbench"
)

type config struct {
	hexData   string
	file      string
	response  string
	dictPath  string
	edits     []string
	inputMode emv.InputMode
	display   emv.DisplayMode
	debug     bool
}

// editList collects repeated -edit flags.
type editList []string

func (e *editList) String() string { return strings.Join(*e, ",") }

func (e *editList) Set(v string) error {
	*e = append(*e, v)
	return nil
}

// Package-level flag variables
var (
	flagHex      string
	flagFile     string
	flagResponse string
	flagDict     string
	flagEdits    editList
	flagMode     string
	flagDisplay  string
	flagDebug    bool
)

var debugEnabled bool

func init() {
	flag.StringVar(&flagHex, "hex", "", "BER-TLV buffer as hex (whitespace allowed)")
	flag.StringVar(&flagFile, "file", "", "Read the hex buffer from a file")
	flag.StringVar(&flagResponse, "response", "", "Full R-APDU as hex, data followed by SW1 SW2")
	flag.StringVar(&flagDict, "dict", "", "Extra YAML tag dictionary layered over the built-in EMV table")
	flag.Var(&flagEdits, "edit", "TAG=VALUE edit applied before the report (repeatable)")
	flag.StringVar(&flagMode, "mode", string(emv.InputHex), "Notation of edited values: hex, ascii or decimal")
	flag.StringVar(&flagDisplay, "display", string(emv.DisplaySmart), "Value display: smart, hex, ascii, decimal, bcd or date")
	flag.BoolVar(&flagDebug, "debug", false, "Enable debug output")
}

func debugf(format string, args ...any) {
	if debugEnabled {
		log.Printf("DEBUG: "+format, args...)
	}
}

func parseConfig() (*config, error) {
	cfg := &config{
		hexData:  flagHex,
		file:     flagFile,
		response: flagResponse,
		dictPath: flagDict,
		edits:    flagEdits,
		debug:    flagDebug,
	}

	sources := 0
	for _, s := range []string{cfg.hexData, cfg.file, cfg.response} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return nil, errors.New("exactly one of -hex, -file or -response is required")
	}

	mode, err := emv.ParseInputMode(flagMode)
	if err != nil {
		return nil, err
	}
	cfg.inputMode = mode

	display, err := emv.ParseDisplayMode(flagDisplay)
	if err != nil {
		return nil, err
	}
	cfg.display = display

	debugEnabled = cfg.debug

	return cfg, nil
}

func main() {
	flag.Parse()

	cfg, err := parseConfig()
	if err != nil {
		flag.Usage()
		log.Fatalf("Error: %v", err)
	}

	if err := run(cfg, os.Stdout); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(cfg *config, out io.Writer) error {
	// Step 1: Dictionary
	dict, err := loadDictionary(cfg.dictPath)
	if err != nil {
		return err
	}
	debugf("dictionary: %d tags (version %d)", dict.Len(), dict.Version())

	// Step 2: Input
	session := workbench.NewSession(dict)
	if err := loadInput(session, cfg); err != nil {
		return err
	}
	debugf("loaded %d top-level objects", len(session.Tree()))

	// Step 3: Edits
	for _, e := range cfg.edits {
		tag, value, err := parseEdit(e)
		if err != nil {
			return err
		}
		if err := session.Edit(tag, value, cfg.inputMode); err != nil {
			return fmt.Errorf("edit %s: %w", tag, err)
		}
		debugf("edited %s, buffer is now %d bytes", tag, len(session.Hex())/2)
	}

	// Step 4: Report
	writeReport(out, session, cfg.display)
	return nil
}

func loadDictionary(path string) (*tagdict.Table, error) {
	dict := tagdict.Default()
	if path == "" {
		return dict, nil
	}

	extra, err := tagdict.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionary: %w", err)
	}
	debugf("%s: %d extra tags", path, extra.Len())
	return dict.With(extra), nil
}

func loadInput(session *workbench.Session, cfg *config) error {
	switch {
	case cfg.response != "":
		sw, err := session.LoadResponse(cfg.response)
		if err != nil {
			return err
		}
		debugf("status word: %s", sw.Verbose())
		return nil

	case cfg.file != "":
		data, err := os.ReadFile(cfg.file)
		if err != nil {
			return err
		}
		return session.Load(string(data))

	default:
		return session.Load(cfg.hexData)
	}
}

// parseEdit splits "TAG=VALUE". The value may be empty.
func parseEdit(s string) (tag, value string, err error) {
	tag, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(tag) == "" {
		return "", "", fmt.Errorf("invalid edit %q, want TAG=VALUE", s)
	}
	return strings.TrimSpace(tag), value, nil
}

func writeReport(out io.Writer, session *workbench.Session, display emv.DisplayMode) {
	dict := session.Dictionary()

	fmt.Fprintln(out, "=== TLV TREE ===")
	fmt.Fprintln(out, session.Describe())

	fmt.Fprintf(out, "\n=== VALUES (%s) ===\n", display)
	tlv.Walk(session.Tree(), func(path []tlv.Tag, n tlv.Node) bool {
		if n.IsContainer() {
			return true
		}
		v := emv.Format(display, n.Tag, tlv.ToHex(n.Value), dict)
		fmt.Fprintf(out, "%-12s %s\n", strings.Join(tagStrings(path), "/"), v)
		return true
	})

	results := session.Results()
	fmt.Fprintln(out, "\n=== VALIDATION ===")
	for _, r := range results {
		fmt.Fprintln(out, r.String())
		for _, hint := range r.Suggestions {
			fmt.Fprintf(out, "    - %s\n", hint)
		}
	}
	fmt.Fprintln(out, emv.Summary(results))

	switch report, err := session.Template(); {
	case err != nil:
		fmt.Fprintf(out, "\ntemplate mapping failed: %v\n", err)
	case report != "":
		fmt.Fprintln(out)
		fmt.Fprintln(out, report)
	}

	fmt.Fprintln(out, "\n=== HEX ===")
	fmt.Fprintln(out, session.Hex())
}

func tagStrings(tags []tlv.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

// Package tagdict holds the dictionary of known EMV data objects.
//
// The dictionary is a versioned YAML table. A default table is embedded in the
// binary and parsed once; callers may load additional tables (proprietary tags,
// scheme specific objects) and layer them on top with With.
//
// Lookups are exact and case-insensitive on the tag's hex form. A missing entry
// is a normal outcome: the tag is simply unknown.
package tagdict

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/gregLibert/emv-workbench/pkg/tlv"
)

// SupportedVersion is the table schema version understood by Load.
const SupportedVersion = 1

var (
	ErrUnsupportedVersion = errors.New("unsupported dictionary version")
	ErrDuplicateTag       = errors.New("duplicate tag")
	ErrInvalidEntry       = errors.New("invalid dictionary entry")
)

//go:embed emv_tags.yaml
var defaultTable []byte

// TagInfo describes one data object.
type TagInfo struct {
	Tag         string   `yaml:"tag"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Format      string   `yaml:"format"`
	Source      string   `yaml:"source,omitempty"`
	Class       string   `yaml:"class,omitempty"`
	Constructed bool     `yaml:"constructed,omitempty"`
	Critical    bool     `yaml:"critical,omitempty"`
	Constraints []string `yaml:"constraints,omitempty"`
	Examples    []string `yaml:"examples,omitempty"`
	Category    string   `yaml:"category,omitempty"`
}

// Dictionary is the lookup capability the validator and formatter depend on.
type Dictionary interface {
	Lookup(tag string) (TagInfo, bool)
}

// Table is an immutable Dictionary. It is safe for concurrent use.
type Table struct {
	version int
	entries map[string]TagInfo
}

type tableFile struct {
	Version int       `yaml:"version"`
	Tags    []TagInfo `yaml:"tags"`
}

var loadDefault = sync.OnceValue(func() *Table {
	t, err := Load(bytes.NewReader(defaultTable))
	if err != nil {
		panic(fmt.Sprintf("tagdict: embedded table is corrupt: %v", err))
	}
	return t
})

// Default returns the embedded EMV table, parsed on first use.
func Default() *Table {
	return loadDefault()
}

// Load reads a YAML table. Unknown fields, duplicate tags and malformed tags
// are rejected.
func Load(r io.Reader) (*Table, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file tableFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode dictionary: %w", err)
	}

	if file.Version != SupportedVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrUnsupportedVersion, file.Version, SupportedVersion)
	}

	t := &Table{
		version: file.Version,
		entries: make(map[string]TagInfo, len(file.Tags)),
	}

	for i, info := range file.Tags {
		tag, err := tlv.ParseTag(info.Tag)
		if err != nil {
			return nil, fmt.Errorf("%w #%d: %w", ErrInvalidEntry, i, err)
		}
		if strings.TrimSpace(info.Name) == "" {
			return nil, fmt.Errorf("%w #%d (%s): missing name", ErrInvalidEntry, i, tag)
		}

		key := string(tag)
		if _, exists := t.entries[key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTag, key)
		}

		info.Tag = key
		if info.Class == "" {
			info.Class = tag.Class().String()
		}
		t.entries[key] = info
	}

	return t, nil
}

// LoadFile reads a YAML table from disk.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Lookup returns the entry for tag. Case and whitespace are ignored.
func (t *Table) Lookup(tag string) (TagInfo, bool) {
	if t == nil {
		return TagInfo{}, false
	}
	info, ok := t.entries[normalize(tag)]
	return info, ok
}

// Constructed implements tlv.ConstructedHint.
func (t *Table) Constructed(tag string) (constructed, known bool) {
	info, ok := t.Lookup(tag)
	if !ok {
		return false, false
	}
	return info.Constructed, true
}

// Name returns the entry name, or "" for unknown tags.
func (t *Table) Name(tag tlv.Tag) string {
	info, _ := t.Lookup(string(tag))
	return info.Name
}

// With returns a new table holding t's entries overridden by other's.
func (t *Table) With(other *Table) *Table {
	merged := &Table{
		version: t.version,
		entries: make(map[string]TagInfo, len(t.entries)+len(other.entries)),
	}
	for k, v := range t.entries {
		merged.entries[k] = v
	}
	for k, v := range other.entries {
		merged.entries[k] = v
	}
	return merged
}

// Tags lists every entry ordered by tag.
func (t *Table) Tags() []TagInfo {
	list := make([]TagInfo, 0, len(t.entries))
	for _, info := range t.entries {
		list = append(list, info)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Tag < list[j].Tag
	})
	return list
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Version returns the schema version the table was loaded with.
func (t *Table) Version() int {
	return t.version
}

func normalize(tag string) string {
	return strings.ToUpper(strings.Join(strings.Fields(tag), ""))
}

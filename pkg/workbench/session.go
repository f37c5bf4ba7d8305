// Package workbench keeps the state of an interactive decode and edit session:
// the current hex buffer, its decoded tree and the latest validation results.
//
// Every successful Load or Edit replaces the whole state at once. A failed
// call leaves the previous state in place.
package workbench

import (
	"errors"
	"fmt"

	"github.com/gregLibert/emv-workbench/internal/syncutil"
	"github.com/gregLibert/emv-workbench/pkg/emv"
	"github.com/gregLibert/emv-workbench/pkg/iso7816"
	"github.com/gregLibert/emv-workbench/pkg/tagdict"
	"github.com/gregLibert/emv-workbench/pkg/tlv"
)

var (
	ErrEmptySession = errors.New("no data loaded")
	ErrCardStatus   = errors.New("card returned a non-success status")

	// ErrConcurrentEdit is returned when another call replaced the state
	// while an edit was being computed.
	ErrConcurrentEdit = errors.New("session changed during edit")
)

// state is one immutable view of the session.
type state struct {
	data    []byte
	hex     string
	nodes   []tlv.Node
	results []emv.ValidationResult
	status  iso7816.StatusWord
}

// Session is safe for concurrent use. Slices returned by its accessors are
// shared with the session and must not be modified.
type Session struct {
	dict *tagdict.Table

	mu  syncutil.RWMutex
	cur *state
}

// NewSession creates an empty session. A nil dict selects tagdict.Default().
func NewSession(dict *tagdict.Table) *Session {
	if dict == nil {
		dict = tagdict.Default()
	}
	return &Session{dict: dict}
}

// Dictionary returns the dictionary the session decodes and validates with.
func (s *Session) Dictionary() *tagdict.Table {
	return s.dict
}

// Load decodes a hex buffer and makes it the current state.
func (s *Session) Load(hexData string) error {
	data, err := tlv.FromHex(hexData)
	if err != nil {
		return err
	}

	st, err := s.build(data)
	if err != nil {
		return err
	}

	s.swap(st)
	return nil
}

// LoadResponse accepts a full R-APDU dump, strips the status word and loads
// the data field. Responses whose status is not a success are rejected.
func (s *Session) LoadResponse(hexData string) (iso7816.StatusWord, error) {
	resp, err := iso7816.ParseResponseAPDUHex(hexData)
	if err != nil {
		return 0, err
	}
	if !resp.Status.IsSuccess() {
		return resp.Status, fmt.Errorf("%w: %s", ErrCardStatus, resp.Status.Verbose())
	}

	st, err := s.build(resp.Data)
	if err != nil {
		return resp.Status, err
	}
	st.status = resp.Status

	s.swap(st)
	return resp.Status, nil
}

// Edit sets the value of every occurrence of tag and re-encodes the buffer.
func (s *Session) Edit(tag, value string, mode emv.InputMode) error {
	s.mu.RLock()
	cur := s.cur
	s.mu.RUnlock()

	if cur == nil {
		return ErrEmptySession
	}

	out, err := emv.ApplyEdit(cur.hex, tag, value, mode, s.dict)
	if err != nil {
		return err
	}

	data, err := tlv.FromHex(out)
	if err != nil {
		return err
	}
	st, err := s.build(data)
	if err != nil {
		return err
	}
	st.status = cur.status

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != cur {
		return ErrConcurrentEdit
	}
	s.cur = st
	return nil
}

// Tree returns the decoded nodes.
func (s *Session) Tree() []tlv.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cur == nil {
		return nil
	}
	return s.cur.nodes
}

// Hex returns the canonical uppercase hex buffer, "" when empty.
func (s *Session) Hex() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cur == nil {
		return ""
	}
	return s.cur.hex
}

// Results returns the validation results of the current tree.
func (s *Session) Results() []emv.ValidationResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cur == nil {
		return nil
	}
	return s.cur.results
}

// Status returns the status word of the last LoadResponse, 0 otherwise.
func (s *Session) Status() iso7816.StatusWord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cur == nil {
		return 0
	}
	return s.cur.status
}

// Format renders the value of the first node carrying tag.
func (s *Session) Format(tag string, mode emv.DisplayMode) (string, error) {
	t, err := tlv.ParseTag(tag)
	if err != nil {
		return "", err
	}

	nodes := s.Tree()
	if nodes == nil {
		return "", ErrEmptySession
	}

	n, ok := tlv.Find(nodes, t)
	if !ok {
		return "", fmt.Errorf("%w: %s", emv.ErrTagNotFound, t)
	}
	return emv.Format(mode, n.Tag, tlv.ToHex(n.Value), s.dict), nil
}

// Describe lists the tree with dictionary names.
func (s *Session) Describe() string {
	return tlv.DescribeTree(s.Tree(), s.dict.Name)
}

// Template maps a buffer starting with an FCI (6F) or a directory record (70)
// onto the EMV template structures and returns their report. Other buffers
// give "".
func (s *Session) Template() (string, error) {
	s.mu.RLock()
	cur := s.cur
	s.mu.RUnlock()

	if cur == nil {
		return "", ErrEmptySession
	}
	if len(cur.nodes) == 0 {
		return "", nil
	}

	switch top := cur.nodes[0].Tag; {
	case top.Equal(emv.TagFCITemplate):
		fci, err := emv.ParseFCI(cur.data)
		if err != nil {
			return "", err
		}
		return fci.Describe(), nil
	case top.Equal(emv.TagRecordTemplate):
		rec, err := emv.ParseDirectoryRecord(cur.data)
		if err != nil {
			return "", err
		}
		return rec.Describe(), nil
	}
	return "", nil
}

// Clear drops the current state.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = nil
}

// build decodes data into a complete state outside of the lock. The buffer is
// normalised first: the stored hex is the canonical encoding, and the stored
// tree and results come from decoding that hex, so all three always agree.
func (s *Session) build(data []byte) (*state, error) {
	nodes, err := tlv.Parse(data, s.dict)
	if err != nil {
		return nil, err
	}

	canonical, err := tlv.Encode(nodes)
	if err != nil {
		return nil, err
	}

	nodes, err = tlv.Parse(canonical, s.dict)
	if err != nil {
		return nil, fmt.Errorf("canonical re-decode failed: %w", err)
	}

	return &state{
		data:    canonical,
		hex:     tlv.ToHex(canonical),
		nodes:   nodes,
		results: emv.Validate(nodes, s.dict),
	}, nil
}

func (s *Session) swap(st *state) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = st
}

// Package qchem renders Q-Chem input decks, parses Q-Chem output files, and
// provides the calculation task variants built on them.
package qchem

import "fmt"

// XCComponent is one row of a $xc_functional block: an exchange ("X"),
// correlation ("C"), or HF-exchange ("K") component with its coefficient.
type XCComponent struct {
	Type        string
	Name        string
	Coefficient float64
}

type section struct {
	keys   []string
	values map[string]interface{}
}

// Settings is a sectioned key/value store for input deck blocks ($rem,
// $pcm, ...) plus the special $xc_functional rows. Section and key order is
// first-appearance order so rendered decks are stable.
type Settings struct {
	sections []string
	bySec    map[string]*section
	xc       []XCComponent
}

// NewSettings returns an empty settings store.
func NewSettings() *Settings {
	return &Settings{bySec: make(map[string]*section)}
}

// Set stores a value under section/key, overwriting any previous value.
func (s *Settings) Set(sec, key string, value interface{}) {
	blk, ok := s.bySec[sec]
	if !ok {
		blk = &section{values: make(map[string]interface{})}
		s.bySec[sec] = blk
		s.sections = append(s.sections, sec)
	}
	if _, exists := blk.values[key]; !exists {
		blk.keys = append(blk.keys, key)
	}
	blk.values[key] = value
}

// SetDefault stores a value only when section/key is absent. Applying a
// variant's defaults through SetDefault gives the override law: the caller's
// value wins wherever both define a key.
func (s *Settings) SetDefault(sec, key string, value interface{}) {
	if !s.Has(sec, key) {
		s.Set(sec, key, value)
	}
}

// Get returns the value under section/key.
func (s *Settings) Get(sec, key string) (interface{}, bool) {
	blk, ok := s.bySec[sec]
	if !ok {
		return nil, false
	}
	v, ok := blk.values[key]
	return v, ok
}

// Has reports whether section/key is set.
func (s *Settings) Has(sec, key string) bool {
	_, ok := s.Get(sec, key)
	return ok
}

// HasAny reports whether any of the keys is set in the section.
func (s *Settings) HasAny(sec string, keys ...string) bool {
	for _, k := range keys {
		if s.Has(sec, k) {
			return true
		}
	}
	return false
}

// SetXC replaces the $xc_functional rows.
func (s *Settings) SetXC(components ...XCComponent) {
	s.xc = append([]XCComponent(nil), components...)
}

// XC returns the $xc_functional rows.
func (s *Settings) XC() []XCComponent {
	return s.xc
}

// Sections returns the section names in first-appearance order.
func (s *Settings) Sections() []string {
	return s.sections
}

// Keys returns a section's keys in first-appearance order.
func (s *Settings) Keys(sec string) []string {
	blk, ok := s.bySec[sec]
	if !ok {
		return nil
	}
	return blk.keys
}

// Clone returns a deep copy. Tasks clone caller settings before applying
// defaults so the caller's store is never mutated.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return NewSettings()
	}
	out := NewSettings()
	for _, sec := range s.sections {
		blk := s.bySec[sec]
		for _, k := range blk.keys {
			out.Set(sec, k, blk.values[k])
		}
	}
	out.xc = append([]XCComponent(nil), s.xc...)
	return out
}

// Merge returns overrides laid over defaults: for every section/key, the
// override value wins when both define it, the default fills the rest.
func Merge(defaults, overrides *Settings) *Settings {
	out := overrides.Clone()
	if defaults == nil {
		return out
	}
	for _, sec := range defaults.sections {
		blk := defaults.bySec[sec]
		for _, k := range blk.keys {
			out.SetDefault(sec, k, blk.values[k])
		}
	}
	if len(out.xc) == 0 {
		out.xc = append([]XCComponent(nil), defaults.xc...)
	}
	return out
}

// formatValue renders a settings value for the input deck.
func formatValue(v interface{}) string {
	switch t := v.(type) {
	case bool:
		if t {
			return "true"
		}
		return "false"
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// StatusEntry is one reviewer/award/mentor key and its free-form label.
type StatusEntry struct {
	Key   string
	Value string
}

// StatusMap is a JSON object whose key order is preserved through decode,
// storage and encode. Notification bodies list entries in this order.
type StatusMap struct {
	entries []StatusEntry
}

// NewStatusMap builds a map from alternating key/value arguments.
func NewStatusMap(kv ...string) *StatusMap {
	s := &StatusMap{}
	for i := 0; i+1 < len(kv); i += 2 {
		s.Set(kv[i], kv[i+1])
	}
	return s
}

func (s *StatusMap) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

func (s *StatusMap) Get(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	for _, e := range s.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Set replaces the value of an existing key in place or appends a new key.
func (s *StatusMap) Set(key, value string) {
	for i := range s.entries {
		if s.entries[i].Key == key {
			s.entries[i].Value = value
			return
		}
	}
	s.entries = append(s.entries, StatusEntry{Key: key, Value: value})
}

func (s *StatusMap) Entries() []StatusEntry {
	if s == nil {
		return nil
	}
	return append([]StatusEntry(nil), s.entries...)
}

func (s *StatusMap) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// First returns the earliest inserted entry. The mentor category keeps
// exactly one entry: the mentor's name and the application state.
func (s *StatusMap) First() (StatusEntry, bool) {
	if s.Len() == 0 {
		return StatusEntry{}, false
	}
	return s.entries[0], true
}

func (s *StatusMap) Clone() *StatusMap {
	if s == nil {
		return nil
	}
	return &StatusMap{entries: s.Entries()}
}

// Lines renders one "key：value" line per entry.
func (s *StatusMap) Lines() string {
	var b strings.Builder
	for _, e := range s.Entries() {
		b.WriteString(e.Key)
		b.WriteString("：")
		b.WriteString(e.Value)
		b.WriteString("\n")
	}
	return b.String()
}

func (s *StatusMap) prune() {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.Value != "" {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}

func (s StatusMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *StatusMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("status: expected object, got %v", tok)
	}
	s.entries = nil
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := kt.(string)
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		switch v := raw.(type) {
		case nil:
			continue
		case string:
			s.Set(key, v)
		case json.Number, bool:
			s.Set(key, fmt.Sprint(v))
		default:
			return fmt.Errorf("status: value of %q must be a string", key)
		}
	}
	_, err = dec.Token()
	return err
}

package application

import (
	"encoding/json"
	"testing"
)

func TestStatusMapPreservesOrder(t *testing.T) {
	raw := []byte(`{"zhang":"pending","li":"approved","wang":"rejected"}`)
	var s StatusMap
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	keys := s.Keys()
	if len(keys) != 3 || keys[0] != "zhang" || keys[1] != "li" || keys[2] != "wang" {
		t.Fatalf("unexpected key order %v", keys)
	}
	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != string(raw) {
		t.Fatalf("round trip changed order: %s", out)
	}
}

func TestStatusMapDecodeValues(t *testing.T) {
	var s StatusMap
	if err := json.Unmarshal([]byte(`{"a":1,"b":null,"c":true,"a":"again"}`), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", s.Len())
	}
	if v, _ := s.Get("a"); v != "again" {
		t.Fatalf("duplicate key should keep last value, got %q", v)
	}
	if first, _ := s.First(); first.Key != "a" {
		t.Fatalf("duplicate key should keep first position, got %q", first.Key)
	}
	if err := json.Unmarshal([]byte(`{"a":{"nested":1}}`), &s); err == nil {
		t.Fatalf("expected error for object value")
	}
	if err := json.Unmarshal([]byte(`["a"]`), &s); err == nil {
		t.Fatalf("expected error for array")
	}
}

func TestStatusMapLines(t *testing.T) {
	s := NewStatusMap("一等奖学金", "已获得", "校友奖学金", "候补")
	if got := s.Lines(); got != "一等奖学金：已获得\n校友奖学金：候补\n" {
		t.Fatalf("unexpected lines %q", got)
	}
	var nilMap *StatusMap
	if nilMap.Lines() != "" || nilMap.Len() != 0 {
		t.Fatalf("nil map should render empty")
	}
}

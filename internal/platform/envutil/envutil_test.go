package envutil

import (
	"testing"
	"time"
)

func TestParsers(t *testing.T) {
	t.Setenv("ENVUTIL_INT", "12")
	t.Setenv("ENVUTIL_BAD_INT", "twelve")
	t.Setenv("ENVUTIL_BOOL", "off")
	t.Setenv("ENVUTIL_SECS", "45")
	t.Setenv("ENVUTIL_DUR", "1m30s")
	t.Setenv("ENVUTIL_STR", "  value  ")

	if got := Int("ENVUTIL_INT", 1, nil); got != 12 {
		t.Fatalf("Int: got %d", got)
	}
	if got := Int("ENVUTIL_BAD_INT", 7, nil); got != 7 {
		t.Fatalf("Int fallback: got %d", got)
	}
	if got := Int("ENVUTIL_MISSING", 3, nil); got != 3 {
		t.Fatalf("Int missing: got %d", got)
	}
	if Bool("ENVUTIL_BOOL", true) {
		t.Fatalf("Bool: expected false")
	}
	if got := Duration("ENVUTIL_SECS", time.Second, nil); got != 45*time.Second {
		t.Fatalf("Duration secs: got %s", got)
	}
	if got := Duration("ENVUTIL_DUR", time.Second, nil); got != 90*time.Second {
		t.Fatalf("Duration string: got %s", got)
	}
	if got := String("ENVUTIL_STR", "def", nil); got != "value" {
		t.Fatalf("String: got %q", got)
	}
	if got := String("ENVUTIL_NOPE", "def", nil); got != "def" {
		t.Fatalf("String default: got %q", got)
	}
}

package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_DUR", "30s")
	if got := Duration("ENVUTIL_TEST_DUR", time.Second); got != 30*time.Second {
		t.Fatalf("duration string: got %v", got)
	}
	t.Setenv("ENVUTIL_TEST_DUR", "12")
	if got := Duration("ENVUTIL_TEST_DUR", time.Second); got != 12*time.Second {
		t.Fatalf("bare seconds: got %v", got)
	}
	t.Setenv("ENVUTIL_TEST_DUR", "soon")
	if got := Duration("ENVUTIL_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("fallback: got %v", got)
	}
}

func TestBoolAndInt(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_BOOL", "off")
	if Bool("ENVUTIL_TEST_BOOL", true) {
		t.Fatalf("expected false")
	}
	t.Setenv("ENVUTIL_TEST_BOOL", "maybe")
	if !Bool("ENVUTIL_TEST_BOOL", true) {
		t.Fatalf("expected default")
	}
	t.Setenv("ENVUTIL_TEST_INT", "x")
	if Int("ENVUTIL_TEST_INT", 7) != 7 {
		t.Fatalf("expected default int")
	}
}

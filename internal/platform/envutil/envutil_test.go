package envutil

import (
	"testing"
	"time"
)

func TestDurationAcceptsSecondsAndGoDurations(t *testing.T) {
	t.Setenv("CADDIE_TEST_DURATION", "45")
	if got := Duration("CADDIE_TEST_DURATION", time.Second); got != 45*time.Second {
		t.Fatalf("seconds: got=%s", got)
	}
	t.Setenv("CADDIE_TEST_DURATION", "1500ms")
	if got := Duration("CADDIE_TEST_DURATION", time.Second); got != 1500*time.Millisecond {
		t.Fatalf("duration: got=%s", got)
	}
	t.Setenv("CADDIE_TEST_DURATION", "-3")
	if got := Duration("CADDIE_TEST_DURATION", time.Second); got != time.Second {
		t.Fatalf("negative: got=%s", got)
	}
	t.Setenv("CADDIE_TEST_DURATION", "soon")
	if got := Duration("CADDIE_TEST_DURATION", time.Second); got != time.Second {
		t.Fatalf("garbage: got=%s", got)
	}
}

func TestFloatClamps(t *testing.T) {
	t.Setenv("CADDIE_TEST_RATIO", "1.7")
	if got := Float("CADDIE_TEST_RATIO", 0.1, 0, 1); got != 1 {
		t.Fatalf("clamp high: got=%v", got)
	}
	t.Setenv("CADDIE_TEST_RATIO", "-0.5")
	if got := Float("CADDIE_TEST_RATIO", 0.1, 0, 1); got != 0 {
		t.Fatalf("clamp low: got=%v", got)
	}
	t.Setenv("CADDIE_TEST_RATIO", "")
	if got := Float("CADDIE_TEST_RATIO", 0.1, 0, 1); got != 0.1 {
		t.Fatalf("default: got=%v", got)
	}
}

func TestPairs(t *testing.T) {
	t.Setenv("CADDIE_TEST_HEADERS", "authorization=Bearer abc, x-team = golf ,broken,=v")
	got := Pairs("CADDIE_TEST_HEADERS")
	if len(got) != 2 || got["authorization"] != "Bearer abc" || got["x-team"] != "golf" {
		t.Fatalf("pairs: got=%v", got)
	}
	t.Setenv("CADDIE_TEST_HEADERS", "broken")
	if got := Pairs("CADDIE_TEST_HEADERS"); got != nil {
		t.Fatalf("expected nil, got=%v", got)
	}
}

func TestBoolAndInt(t *testing.T) {
	t.Setenv("CADDIE_TEST_FLAG", "Off")
	if Bool("CADDIE_TEST_FLAG", true) {
		t.Fatalf("expected false")
	}
	t.Setenv("CADDIE_TEST_INT", "x")
	if got := Int("CADDIE_TEST_INT", 7); got != 7 {
		t.Fatalf("int default: got=%d", got)
	}
}

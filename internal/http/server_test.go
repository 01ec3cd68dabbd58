package http

import (
	"testing"
	"time"
)

func TestNewServerSizesWriteTimeoutForSlowestRoute(t *testing.T) {
	s := NewServer(RouterConfig{
		RequestTimeout: 30 * time.Second,
		RouteTimeouts:  map[string]time.Duration{"/api/caddie/recommend": 90 * time.Second},
	})
	if s.writeTimeout != 95*time.Second {
		t.Fatalf("write timeout: got=%s", s.writeTimeout)
	}
	if got := writeTimeoutFor(0); got != 0 {
		t.Fatalf("unbounded requests should disable write timeout, got=%s", got)
	}
}

// Package envutil reads optional tuning knobs that sit outside the typed
// application config, such as provider client and exporter settings.
package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func lookup(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

func String(name, def string) string {
	if v := lookup(name); v != "" {
		return v
	}
	return def
}

func Int(name string, def int) int {
	i, err := strconv.Atoi(lookup(name))
	if err != nil {
		return def
	}
	return i
}

// Float reads a float and clamps it to [lo, hi].
func Float(name string, def, lo, hi float64) float64 {
	f, err := strconv.ParseFloat(lookup(name), 64)
	if err != nil {
		return def
	}
	return min(max(f, lo), hi)
}

func Bool(name string, def bool) bool {
	switch strings.ToLower(lookup(name)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// Duration accepts either a Go duration ("1500ms") or a bare number of seconds.
// Negative values fall back to def.
func Duration(name string, def time.Duration) time.Duration {
	raw := lookup(name)
	if raw == "" {
		return def
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 {
			return def
		}
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return def
	}
	return d
}

// Pairs parses "k1=v1,k2=v2". Entries without a key or value are dropped; nil
// is returned when nothing usable remains.
func Pairs(name string) map[string]string {
	raw := lookup(name)
	if raw == "" {
		return nil
	}
	out := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		key, val, ok := strings.Cut(part, "=")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if ok && key != "" && val != "" {
			out[key] = val
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

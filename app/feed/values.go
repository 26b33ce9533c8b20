package feed

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// Safe accessors over loosely typed decoded payloads. Missing keys and
// type mismatches yield the fallback, never a panic.

func stringValue(m map[string]any, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func sliceValue(m map[string]any, key string) []any {
	v, _ := m[key].([]any)
	return v
}

func mapValue(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func stringSlice(m map[string]any, key string) []string {
	raw := sliceValue(m, key)
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// normalizeDate converts any reasonable timestamp representation to
// RFC 3339 UTC. Empty or unparseable input yields the reference clock's
// current time; a record never carries raw date text.
func normalizeDate(raw string, now func() time.Time) string {
	if raw != "" {
		if t, err := dateparse.ParseAny(raw); err == nil {
			return formatTime(t)
		}
	}
	return formatTime(now())
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func recordID(sourceURL string, index int) string {
	return fmt.Sprintf("%s-%d", sourceURL, index)
}

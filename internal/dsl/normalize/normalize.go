// Package normalize reshapes raw remote execution results into a small set
// of predictable shapes and applies the truncation policy. Pure functions
// only; no I/O.
package normalize

import "fmt"

// EnvelopeTag marks the object returned by the test-mode wrapper when it
// truncated an array result.
const EnvelopeTag = "__testModeEnvelope"

// MaxNormalRecords is the record ceiling applied to untagged array results
// outside test mode.
const MaxNormalRecords = 1000

// Normalized is the normalizer's contribution to an execution result.
type Normalized struct {
	Data        any
	Logs        []string
	Truncated   bool
	RecordCount int
	CountKnown  bool
}

// Normalize categorizes a raw remote result. Shapes are mutually exclusive
// and tested in priority order: test-mode envelope, array, single-value
// wrapper, bare primitive, row-count aggregate, null, passthrough.
func Normalize(raw any, testMode bool) Normalized {
	if testMode {
		if m, ok := raw.(map[string]any); ok {
			if tagged, _ := m[EnvelopeTag].(bool); tagged {
				return normalizeEnvelope(m)
			}
		}
	}

	if arr, ok := raw.([]any); ok {
		return normalizeArray(arr)
	}

	if m, ok := raw.(map[string]any); ok {
		if value, ok := m["value"]; ok {
			return Normalized{Data: value}
		}
	}

	if kind, ok := primitiveKind(raw); ok {
		return Normalized{Data: map[string]any{"value": raw, "type": kind}}
	}

	if m, ok := raw.(map[string]any); ok {
		if count, ok := intField(m, "row_count"); ok {
			return Normalized{Data: m, RecordCount: count, CountKnown: true}
		}
	}

	if raw == nil {
		return Normalized{
			Data: nil,
			Logs: []string{"No records found"},
		}
	}

	return Normalized{Data: raw}
}

// normalizeEnvelope unwraps the test-mode wrapper's tagged envelope.
func normalizeEnvelope(m map[string]any) Normalized {
	n := Normalized{Data: m["data"]}
	n.Truncated, _ = m["truncated"].(bool)

	if arr, ok := n.Data.([]any); ok {
		n.RecordCount = len(arr)
		n.CountKnown = true
		if n.Truncated {
			total, _ := intField(m, "totalCount")
			n.Logs = append(n.Logs, fmt.Sprintf(
				"Test mode: showing %d of %d records", len(arr), total))
		}
	}
	return n
}

// normalizeArray applies the normal-mode record ceiling to untagged arrays.
func normalizeArray(arr []any) Normalized {
	if len(arr) > MaxNormalRecords {
		return Normalized{
			Data:        arr[:MaxNormalRecords],
			Truncated:   true,
			RecordCount: MaxNormalRecords,
			CountKnown:  true,
			Logs: []string{fmt.Sprintf(
				"Result truncated: showing %d of %d records", MaxNormalRecords, len(arr))},
		}
	}
	return Normalized{
		Data:        arr,
		RecordCount: len(arr),
		CountKnown:  true,
	}
}

// primitiveKind reports the JSON-facing kind of a bare primitive, so callers
// can distinguish a count of zero from an absent result.
func primitiveKind(raw any) (string, bool) {
	switch raw.(type) {
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "number", true
	case string:
		return "string", true
	case bool:
		return "boolean", true
	}
	return "", false
}

// intField reads a numeric member that may arrive as a float64 (JSON) or an
// int (in-process callers).
func intField(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}

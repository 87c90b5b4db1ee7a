package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRecords(n int) []any {
	arr := make([]any, n)
	for i := range arr {
		arr[i] = map[string]any{"sys_id": i}
	}
	return arr
}

func TestNormalize_Envelope(t *testing.T) {
	t.Run("truncated envelope", func(t *testing.T) {
		raw := map[string]any{
			EnvelopeTag:  true,
			"truncated":  true,
			"totalCount": float64(250),
			"data":       makeRecords(100),
		}

		n := Normalize(raw, true)
		assert.True(t, n.Truncated)
		assert.Equal(t, 100, n.RecordCount)
		require.Len(t, n.Logs, 1)
		assert.Contains(t, n.Logs[0], "100")
		assert.Contains(t, n.Logs[0], "250")

		data, ok := n.Data.([]any)
		require.True(t, ok)
		assert.Len(t, data, 100)
	})

	t.Run("untruncated envelope has no log", func(t *testing.T) {
		raw := map[string]any{
			EnvelopeTag: true,
			"truncated": false,
			"data":      makeRecords(3),
		}

		n := Normalize(raw, true)
		assert.False(t, n.Truncated)
		assert.Equal(t, 3, n.RecordCount)
		assert.Empty(t, n.Logs)
	})

	t.Run("envelope tag is ignored outside test mode", func(t *testing.T) {
		raw := map[string]any{
			EnvelopeTag: true,
			"truncated": true,
			"data":      makeRecords(2),
		}

		n := Normalize(raw, false)
		assert.False(t, n.Truncated)
		assert.Equal(t, raw, n.Data)
	})
}

func TestNormalize_Array(t *testing.T) {
	t.Run("under ceiling passes through", func(t *testing.T) {
		n := Normalize(makeRecords(5), false)
		assert.False(t, n.Truncated)
		assert.Equal(t, 5, n.RecordCount)
		assert.True(t, n.CountKnown)
		assert.Empty(t, n.Logs)
	})

	t.Run("over ceiling is truncated", func(t *testing.T) {
		n := Normalize(makeRecords(1500), false)
		assert.True(t, n.Truncated)
		assert.Equal(t, MaxNormalRecords, n.RecordCount)

		data, ok := n.Data.([]any)
		require.True(t, ok)
		assert.Len(t, data, MaxNormalRecords)

		require.Len(t, n.Logs, 1)
		assert.Contains(t, n.Logs[0], "1000")
		assert.Contains(t, n.Logs[0], "1500")
	})

	t.Run("empty array keeps a zero count", func(t *testing.T) {
		n := Normalize([]any{}, false)
		assert.Equal(t, 0, n.RecordCount)
		assert.True(t, n.CountKnown)
		assert.False(t, n.Truncated)
	})
}

func TestNormalize_ValueWrapper(t *testing.T) {
	raw := map[string]any{"value": map[string]any{"number": "INC0001"}}

	n := Normalize(raw, false)
	assert.Equal(t, map[string]any{"number": "INC0001"}, n.Data)
}

func TestNormalize_Primitives(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		kind string
	}{
		{"float", float64(42), "number"},
		{"int", 0, "number"},
		{"string", "done", "string"},
		{"bool", true, "boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Normalize(tt.raw, false)
			data, ok := n.Data.(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.raw, data["value"])
			assert.Equal(t, tt.kind, data["type"])
		})
	}

	t.Run("zero count is distinguishable from absent", func(t *testing.T) {
		n := Normalize(float64(0), false)
		data, ok := n.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(0), data["value"])
	})
}

func TestNormalize_RowCountAggregate(t *testing.T) {
	raw := map[string]any{"row_count": float64(7), "avg": float64(2.5)}

	n := Normalize(raw, false)
	assert.Equal(t, raw, n.Data)
	assert.Equal(t, 7, n.RecordCount)
	assert.True(t, n.CountKnown)
}

func TestNormalize_Null(t *testing.T) {
	n := Normalize(nil, false)
	assert.Nil(t, n.Data)
	require.Len(t, n.Logs, 1)
	assert.Contains(t, n.Logs[0], "No records found")
}

func TestNormalize_Passthrough(t *testing.T) {
	raw := map[string]any{"custom": "shape"}

	n := Normalize(raw, false)
	assert.Equal(t, raw, n.Data)
	assert.False(t, n.CountKnown)
}

func TestNormalize_DataRoundTripsThroughJSON(t *testing.T) {
	shapes := []any{
		makeRecords(3),
		map[string]any{"value": "single"},
		float64(5),
		nil,
	}

	for _, raw := range shapes {
		n := Normalize(raw, false)

		encoded, err := json.Marshal(n.Data)
		require.NoError(t, err)

		var decoded any
		require.NoError(t, json.Unmarshal(encoded, &decoded))

		reencoded, err := json.Marshal(decoded)
		require.NoError(t, err)
		assert.JSONEq(t, string(encoded), string(reencoded))
	}
}

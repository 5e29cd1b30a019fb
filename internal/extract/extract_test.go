package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodePayloadToleratesSloppyJSON(t *testing.T) {
	t.Parallel()

	// Trailing comma and unquoted key, both observed in the wild.
	payload, err := DecodePayload([]byte(`{content: {"list": [{"period": "114000001"},]}}`))
	require.NoError(t, err)
	require.NotNil(t, payload)
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := DecodePayload([]byte(`<html>not json</html>`))
	require.Error(t, err)
}

func TestRowsProbesContainerPathsInOrder(t *testing.T) {
	t.Parallel()

	e := NewExtractor(nil, nil)

	nested := map[string]any{
		"content": map[string]any{
			"list": []any{map[string]any{"period": "1"}},
		},
	}
	require.Len(t, e.Rows(nested), 1)

	alt := map[string]any{
		"data": map[string]any{
			"rows": []any{map[string]any{"period": "1"}, map[string]any{"period": "2"}},
		},
	}
	require.Len(t, e.Rows(alt), 2)

	bare := []any{map[string]any{"period": "1"}}
	require.Len(t, e.Rows(bare), 1)
}

func TestRowsPrefersEarlierPath(t *testing.T) {
	t.Parallel()

	e := NewExtractor(nil, nil)
	payload := map[string]any{
		"content": map[string]any{"list": []any{"first"}},
		"data":    map[string]any{"rows": []any{"second", "third"}},
	}
	rows := e.Rows(payload)
	require.Equal(t, []any{"first"}, rows)
}

func TestRowsMissIsNilNotError(t *testing.T) {
	t.Parallel()

	e := NewExtractor(nil, nil)
	require.Nil(t, e.Rows(map[string]any{"status": "ok"}))
	require.Nil(t, e.Rows(map[string]any{"content": map[string]any{"list": []any{}}}))
	require.Nil(t, e.Rows("just a string"))
	require.Nil(t, e.Rows(nil))
}

func TestTotalCountHint(t *testing.T) {
	t.Parallel()

	e := NewExtractor(nil, nil)

	n, ok := e.TotalCount(map[string]any{"content": map[string]any{"totalSize": float64(203)}})
	require.True(t, ok)
	require.Equal(t, 203, n)

	n, ok = e.TotalCount(map[string]any{"total": "96"})
	require.True(t, ok)
	require.Equal(t, 96, n)

	_, ok = e.TotalCount(map[string]any{"total": float64(0)})
	require.False(t, ok, "zero hints are ignored")

	_, ok = e.TotalCount(map[string]any{"status": "ok"})
	require.False(t, ok)
}

func TestExtractorCustomPaths(t *testing.T) {
	t.Parallel()

	e := NewExtractor([]string{"payload.draws"}, []string{"payload.count"})
	doc := map[string]any{
		"payload": map[string]any{
			"draws": []any{map[string]any{"period": "1"}},
			"count": float64(5),
		},
	}
	require.Len(t, e.Rows(doc), 1)
	n, ok := e.TotalCount(doc)
	require.True(t, ok)
	require.Equal(t, 5, n)
}

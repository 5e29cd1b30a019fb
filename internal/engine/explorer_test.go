package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func smallDims() Dimensions {
	return Dimensions{
		Endpoints:   []string{"https://a.example/api", "https://b.example/api"},
		DateKeys:    []string{"date", "openDate"},
		DateFormats: []DateFormat{DateFormatISO, DateFormatROC},
		PageKeys:    []string{"pageNum"},
		Methods:     []string{"GET", "POST"},
		PageOrigins: []int{1},
	}
}

func TestExplorerEnumeratesFullSpace(t *testing.T) {
	t.Parallel()

	dims := smallDims()
	ex := NewExplorer(dims)

	seen := make(map[string]struct{})
	count := 0
	for {
		shape, ok := ex.Next()
		if !ok {
			break
		}
		count++
		seen[shape.String()] = struct{}{}
	}
	require.Equal(t, dims.Total(), count)
	require.Len(t, seen, count, "no duplicate shapes")
}

func TestExplorerOrderingIsStable(t *testing.T) {
	t.Parallel()

	first := NewExplorer(smallDims())
	second := NewExplorer(smallDims())
	for {
		a, okA := first.Next()
		b, okB := second.Next()
		require.Equal(t, okA, okB)
		if !okA {
			break
		}
		require.Equal(t, a, b)
	}
}

func TestExplorerVariesInnermostAxisFirst(t *testing.T) {
	t.Parallel()

	ex := NewExplorer(smallDims())
	a, ok := ex.Next()
	require.True(t, ok)
	b, ok := ex.Next()
	require.True(t, ok)

	// Methods are the innermost populated multi-value axis here.
	require.Equal(t, a.Endpoint, b.Endpoint)
	require.Equal(t, a.DateKey, b.DateKey)
	require.Equal(t, a.DateFormat, b.DateFormat)
	require.NotEqual(t, a.Method, b.Method)
}

func TestExplorerEmptyAxisYieldsEmptySequence(t *testing.T) {
	t.Parallel()

	dims := smallDims()
	dims.Endpoints = nil
	ex := NewExplorer(dims)
	_, ok := ex.Next()
	require.False(t, ok)
}

func TestExplorerReset(t *testing.T) {
	t.Parallel()

	ex := NewExplorer(smallDims())
	first, ok := ex.Next()
	require.True(t, ok)
	ex.Reset()
	again, ok := ex.Next()
	require.True(t, ok)
	require.Equal(t, first, again)
}

func TestShapeParams(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	iso := Shape{DateKey: "date", DateFormat: DateFormatISO, PageKey: "pageNum"}
	require.Equal(t, map[string]string{"date": "2026-08-29", "pageNum": "3"}, iso.Params(date, 3))

	roc := Shape{DateKey: "openDate", DateFormat: DateFormatROC, PageKey: "page"}
	require.Equal(t, map[string]string{"openDate": "115/08/29", "page": "1"}, roc.Params(date, 1))

	slash := Shape{DateKey: "date", DateFormat: DateFormatSlash, PageKey: "page"}
	require.Equal(t, "2026/08/29", slash.Params(date, 0)["date"])
}

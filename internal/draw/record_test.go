package draw

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ballRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func intPtr(v int) *int {
	return &v
}

func TestNewRecordAcceptsValidDraw(t *testing.T) {
	t.Parallel()

	rec, err := NewRecord("114046629", "2026-08-29", ballRange(20), intPtr(42))
	require.NoError(t, err)
	require.Equal(t, "114046629", rec.Period)
	require.Len(t, rec.Balls, 20)
	require.NotNil(t, rec.Super)
	require.Equal(t, 42, *rec.Super)
	require.True(t, rec.Complete())
}

func TestNewRecordSortsBalls(t *testing.T) {
	t.Parallel()

	balls := []int{20, 19, 18, 17, 16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	rec, err := NewRecord("1", "", balls, nil)
	require.NoError(t, err)
	require.Equal(t, ballRange(20), rec.Balls)
	require.Equal(t, 20, balls[0], "input slice must not be reordered")
}

func TestNewRecordRejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		period string
		balls  []int
		super  *int
		want   error
	}{
		{"empty period", "", ballRange(20), nil, ErrEmptyPeriod},
		{"too few balls", "1", ballRange(19), nil, ErrBallCount},
		{"too many balls", "1", ballRange(21), nil, ErrBallCount},
		{"ball out of range", "1", append(ballRange(19), 81), nil, ErrBallRange},
		{"ball below range", "1", append(ballRange(19), 0), nil, ErrBallRange},
		{"duplicate ball", "1", append(ballRange(19), 19), nil, ErrDuplicateBall},
		{"super out of range", "1", ballRange(20), intPtr(81), ErrSuperRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRecord(tc.period, "", tc.balls, tc.super)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRecordCompleteness(t *testing.T) {
	t.Parallel()

	withSuper, err := NewRecord("1", "", ballRange(20), intPtr(7))
	require.NoError(t, err)
	require.True(t, withSuper.Complete())

	withoutSuper, err := NewRecord("1", "", ballRange(20), nil)
	require.NoError(t, err)
	require.False(t, withoutSuper.Complete())
}

func TestPeriodValue(t *testing.T) {
	t.Parallel()

	rec, err := NewRecord("114046629", "", ballRange(20), nil)
	require.NoError(t, err)
	require.Equal(t, int64(114046629), rec.PeriodValue())

	rec.Period = "not-a-number"
	require.Equal(t, int64(0), rec.PeriodValue())
}

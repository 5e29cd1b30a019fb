// Package draw defines the canonical draw record and the reconciliation store.
package draw

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// Ball domain constants for one draw period.
const (
	BallCount = 20
	BallMin   = 1
	BallMax   = 80
)

// Rejection reasons returned by NewRecord. Callers use errors.Is to count
// them without string matching.
var (
	ErrEmptyPeriod   = errors.New("draw: empty period")
	ErrBallCount     = errors.New("draw: fewer than 20 distinct valid balls")
	ErrBallRange     = errors.New("draw: ball outside 1..80")
	ErrDuplicateBall = errors.New("draw: duplicate ball")
	ErrSuperRange    = errors.New("draw: super number outside 1..80")
)

// Record is one validated draw. A Record that fails validation is never
// constructed; the only way to obtain one is NewRecord.
type Record struct {
	Period string `json:"period"`
	Date   string `json:"date,omitempty"`
	Balls  []int  `json:"balls"`
	Super  *int   `json:"super"`
}

// NewRecord validates and builds a Record. Balls are stored in ascending
// order regardless of input order; the input slice is not modified.
func NewRecord(period, date string, balls []int, super *int) (Record, error) {
	if period == "" {
		return Record{}, ErrEmptyPeriod
	}
	if len(balls) != BallCount {
		return Record{}, fmt.Errorf("%w: got %d", ErrBallCount, len(balls))
	}
	seen := make(map[int]struct{}, BallCount)
	sorted := make([]int, 0, BallCount)
	for _, b := range balls {
		if b < BallMin || b > BallMax {
			return Record{}, fmt.Errorf("%w: %d", ErrBallRange, b)
		}
		if _, dup := seen[b]; dup {
			return Record{}, fmt.Errorf("%w: %d", ErrDuplicateBall, b)
		}
		seen[b] = struct{}{}
		sorted = append(sorted, b)
	}
	sort.Ints(sorted)

	var superCopy *int
	if super != nil {
		if *super < BallMin || *super > BallMax {
			return Record{}, fmt.Errorf("%w: %d", ErrSuperRange, *super)
		}
		v := *super
		superCopy = &v
	}

	return Record{
		Period: period,
		Date:   date,
		Balls:  sorted,
		Super:  superCopy,
	}, nil
}

// Complete reports whether the record carries all 20 balls and a super
// number. Completeness drives replacement decisions during reconciliation.
func (r Record) Complete() bool {
	return len(r.Balls) == BallCount && r.Super != nil
}

// PeriodValue returns the numeric value of the period identifier. Periods
// are opaque strings but sort numerically; a non-numeric period sorts first.
func (r Record) PeriodValue() int64 {
	v, err := strconv.ParseInt(r.Period, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

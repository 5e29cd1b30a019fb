package draw

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Store maps period -> Record. Entries are never deleted; Reconcile is the
// only mutation path and always returns a new Store, leaving its receiver
// untouched.
type Store map[string]Record

// NewStore returns an empty Store.
func NewStore() Store {
	return make(Store)
}

// Export returns the records in ascending numeric-period order. Ties on
// numeric value (non-numeric periods collapse to zero) break on the raw
// string so the ordering stays total.
func (s Store) Export() []Record {
	out := make([]Record, 0, len(s))
	for _, r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		vi, vj := out[i].PeriodValue(), out[j].PeriodValue()
		if vi != vj {
			return vi < vj
		}
		return out[i].Period < out[j].Period
	})
	return out
}

// Marshal serializes the store as the ascending-period record list. This is
// the byte schema the persistence gateway writes and the definition of
// "changed" for Reconcile.
func (s Store) Marshal() ([]byte, error) {
	data, err := json.Marshal(s.Export())
	if err != nil {
		return nil, fmt.Errorf("marshal store: %w", err)
	}
	return data, nil
}

// MaxPeriod returns the highest numeric period in the store, or "" when empty.
func (s Store) MaxPeriod() string {
	best := ""
	var bestVal int64 = -1
	for _, r := range s {
		if v := r.PeriodValue(); v > bestVal || (v == bestVal && r.Period > best) {
			best, bestVal = r.Period, v
		}
	}
	return best
}

// MergeResult reports what a Reconcile call did.
type MergeResult struct {
	Store     Store
	Added     int
	Upgraded  int
	Conflicts int
	Changed   bool
}

// Reconcile folds incoming records into existing and returns the merged
// store. The merge is idempotent and completeness-monotonic:
//
//   - absent periods are inserted;
//   - an existing incomplete entry is replaced only by a complete incoming one;
//   - a complete existing entry is never replaced. When a complete incoming
//     record disagrees with a complete existing one, the existing record wins
//     (first-complete-wins); the conflict is logged and counted but not applied.
//
// Changed is true iff the serialized output differs from the serialized input.
func Reconcile(existing Store, incoming []Record, logger *zap.Logger) (MergeResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	before, err := existing.Marshal()
	if err != nil {
		return MergeResult{}, err
	}

	merged := make(Store, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = v
	}

	res := MergeResult{}
	for _, in := range incoming {
		cur, ok := merged[in.Period]
		if !ok {
			merged[in.Period] = in
			res.Added++
			continue
		}
		if cur.Complete() {
			if in.Complete() && !sameRecord(cur, in) {
				res.Conflicts++
				logger.Warn("Conflicting complete record ignored",
					zap.String("period", in.Period),
					zap.Ints("kept_balls", cur.Balls),
					zap.Ints("ignored_balls", in.Balls),
				)
			}
			continue
		}
		if in.Complete() {
			merged[in.Period] = in
			res.Upgraded++
		}
	}

	after, err := merged.Marshal()
	if err != nil {
		return MergeResult{}, err
	}
	res.Store = merged
	res.Changed = !bytes.Equal(before, after)
	return res, nil
}

func sameRecord(a, b Record) bool {
	if a.Period != b.Period || a.Date != b.Date {
		return false
	}
	if len(a.Balls) != len(b.Balls) {
		return false
	}
	for i := range a.Balls {
		if a.Balls[i] != b.Balls[i] {
			return false
		}
	}
	if (a.Super == nil) != (b.Super == nil) {
		return false
	}
	return a.Super == nil || *a.Super == *b.Super
}

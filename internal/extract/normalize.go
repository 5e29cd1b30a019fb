package extract

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bingokit/drawsync/internal/draw"
)

// Rejection reasons specific to normalization. Ball/period validation
// failures surface as the draw package's own errors.
var (
	ErrNotObject = errors.New("extract: row is not an object")
)

// Field alias tables, evaluated in priority order. The provider has shipped
// every one of these spellings at some point; order encodes how much we
// trust each.
var (
	periodAliases = []string{"period", "drawTerm", "term", "issue", "issueNo", "dailyDrawNo", "no"}
	dateAliases   = []string{"date", "drawDate", "dDate", "openDate", "lotteryDate", "dateFormat"}
	ballAliases   = []string{"winNo", "bigShowOrder", "drawNumberAppear", "openCode", "balls", "numbers", "winningNumbers"}
	superAliases  = []string{"super", "superNo", "extraNo", "specialNo", "bonusNo", "sno"}
	slotPrefixes  = []string{"no", "num", "ball", "n"}
)

// Normalizer maps one heterogeneous raw row into a canonical draw.Record.
// Resolution is table-driven and deterministic: a fixed fixture always
// yields the same record or the same rejection.
type Normalizer struct{}

// NewNormalizer returns a Normalizer with the built-in alias tables.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize builds a Record from one raw row, or returns the rejection
// reason. The ball list is resolved through three strategies in order:
// an explicit ball-list field, twenty individually named slot fields, and
// finally a scan of every numeric token in the row's remaining values.
func (n *Normalizer) Normalize(row any) (draw.Record, error) {
	obj, ok := row.(map[string]any)
	if !ok {
		return draw.Record{}, ErrNotObject
	}

	period := firstString(obj, periodAliases)
	date := canonicalDate(firstString(obj, dateAliases))

	tokens := n.resolveBallTokens(obj)
	if len(tokens) < draw.BallCount {
		return draw.Record{}, fmt.Errorf("%w: got %d", draw.ErrBallCount, len(tokens))
	}
	balls := tokens[:draw.BallCount]

	super := n.resolveSuper(obj, tokens)

	return draw.NewRecord(period, date, balls, super)
}

// resolveBallTokens returns up to 21 distinct in-range ball tokens in
// encounter order. A 21st token, when present, is the super-number
// fallback; slot rows carry exactly 20 by construction.
func (n *Normalizer) resolveBallTokens(obj map[string]any) []int {
	if raw, ok := firstValue(obj, ballAliases); ok {
		return keepDistinctInRange(valueTokens(raw), draw.BallCount+1)
	}

	if slots, ok := slotFields(obj); ok {
		return keepDistinctInRange(slots, draw.BallCount)
	}

	return keepDistinctInRange(scanTokens(obj), draw.BallCount+1)
}

// resolveSuper applies the documented fallback chain: explicit in-range
// field, then the 21st distinct token, then the last of the 20 kept balls.
func (n *Normalizer) resolveSuper(obj map[string]any, tokens []int) *int {
	if raw, ok := firstValue(obj, superAliases); ok {
		toks := valueTokens(raw)
		if len(toks) == 1 && inRange(toks[0]) {
			v := toks[0]
			return &v
		}
	}
	if len(tokens) > draw.BallCount {
		v := tokens[draw.BallCount]
		return &v
	}
	if len(tokens) == draw.BallCount {
		v := tokens[draw.BallCount-1]
		return &v
	}
	return nil
}

// slotFields reconstructs the ball list from 20 individually named fields
// (no1..no20, ball_1..ball_20, ...). All 20 slots of one prefix family must
// be present.
func slotFields(obj map[string]any) ([]int, bool) {
	for _, prefix := range slotPrefixes {
		balls := make([]int, 0, draw.BallCount)
		complete := true
		for i := 1; i <= draw.BallCount; i++ {
			v, ok := lookupSlot(obj, prefix, i)
			if !ok {
				complete = false
				break
			}
			balls = append(balls, v)
		}
		if complete {
			return balls, true
		}
	}
	return nil, false
}

func lookupSlot(obj map[string]any, prefix string, i int) (int, bool) {
	for _, key := range []string{
		fmt.Sprintf("%s%d", prefix, i),
		fmt.Sprintf("%s_%d", prefix, i),
		fmt.Sprintf("%s%02d", prefix, i),
	} {
		if raw, ok := obj[key]; ok {
			toks := valueTokens(raw)
			if len(toks) == 1 {
				return toks[0], true
			}
		}
	}
	return 0, false
}

// scanTokens is the last-resort strategy: every numeric token from every
// string/array value in the row, visited in sorted-key order so the result
// is deterministic. Values consumed as period or date are skipped so their
// digits cannot masquerade as balls.
func scanTokens(obj map[string]any) []int {
	skip := make(map[string]struct{}, len(periodAliases)+len(dateAliases))
	for _, k := range periodAliases {
		skip[k] = struct{}{}
	}
	for _, k := range dateAliases {
		skip[k] = struct{}{}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		if _, skipped := skip[k]; skipped {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []int
	for _, k := range keys {
		out = append(out, valueTokens(obj[k])...)
	}
	return out
}

func keepDistinctInRange(tokens []int, limit int) []int {
	seen := make(map[int]struct{}, limit)
	out := make([]int, 0, limit)
	for _, tok := range tokens {
		if !inRange(tok) {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
		if len(out) == limit {
			break
		}
	}
	return out
}

func inRange(v int) bool {
	return v >= draw.BallMin && v <= draw.BallMax
}

// valueTokens extracts numeric tokens from one value, recursing into
// arrays. Strings go through ASCII-digit token extraction so surrounding
// punctuation and whitespace never matter.
func valueTokens(v any) []int {
	switch val := v.(type) {
	case string:
		return digitTokens(val)
	case float64:
		return []int{int(val)}
	case int:
		return []int{val}
	case []any:
		var out []int
		for _, item := range val {
			out = append(out, valueTokens(item)...)
		}
		return out
	default:
		return nil
	}
}

// digitTokens splits a string into maximal runs of ASCII digits.
func digitTokens(s string) []int {
	var out []int
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		if v, err := strconv.Atoi(s[start:end]); err == nil {
			out = append(out, v)
		}
		start = -1
	}
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(s))
	return out
}

func firstString(obj map[string]any, aliases []string) string {
	raw, ok := firstValue(obj, aliases)
	if !ok {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func firstValue(obj map[string]any, aliases []string) (any, bool) {
	for _, key := range aliases {
		if v, ok := obj[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

var rocDatePattern = regexp.MustCompile(`^([0-9]{2,3})[/.-]([0-9]{1,2})[/.-]([0-9]{1,2})$`)

// canonicalDate normalizes slash separators to dashes and converts
// Republic-of-China calendar years (e.g. 114/08/29) to the Gregorian
// calendar. Unrecognized shapes pass through untouched.
func canonicalDate(s string) string {
	if s == "" {
		return ""
	}
	if m := rocDatePattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if year < 1000 {
			year += 1911
		}
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	}
	return strings.ReplaceAll(s, "/", "-")
}

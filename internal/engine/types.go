// Package engine implements the acquisition run: candidate-shape search,
// pagination, the API-then-HTML fallback state machine, and the merge step.
package engine

import (
	"fmt"
	"strconv"
	"time"
)

// DateFormat names one way the provider has encoded dates in requests.
type DateFormat string

const (
	DateFormatISO   DateFormat = "iso"   // 2026-08-29
	DateFormatSlash DateFormat = "slash" // 2026/08/29
	DateFormatROC   DateFormat = "roc"   // 115/08/29, Republic-of-China calendar
)

// FormatDate renders t in the given encoding. Unknown formats fall back to ISO.
func FormatDate(t time.Time, f DateFormat) string {
	switch f {
	case DateFormatSlash:
		return t.Format("2006/01/02")
	case DateFormatROC:
		return fmt.Sprintf("%03d/%02d/%02d", t.Year()-1911, int(t.Month()), t.Day())
	default:
		return t.Format("2006-01-02")
	}
}

// Shape is one concrete guess at the provider's request contract. Shapes are
// ephemeral: generated, tried, and discarded, except the first one that
// yields records, which stays pinned for the rest of its pagination run.
type Shape struct {
	Endpoint   string
	DateKey    string
	DateFormat DateFormat
	PageKey    string
	Method     string
	PageOrigin int
}

// Params builds the request parameters for one (date, page) against this shape.
func (s Shape) Params(date time.Time, page int) map[string]string {
	return map[string]string{
		s.DateKey: FormatDate(date, s.DateFormat),
		s.PageKey: strconv.Itoa(page),
	}
}

// String identifies the shape in logs.
func (s Shape) String() string {
	return fmt.Sprintf("%s %s?%s=%s&%s=p%d", s.Method, s.Endpoint, s.DateKey, s.DateFormat, s.PageKey, s.PageOrigin)
}

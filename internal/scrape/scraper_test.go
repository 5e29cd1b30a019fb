package scrape

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bingokit/drawsync/internal/extract"
)

type fakeDocFetcher struct {
	body []byte
	err  error
}

func (f *fakeDocFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	return f.body, f.err
}

type fakeRenderer struct {
	body  []byte
	err   error
	calls int
}

func (r *fakeRenderer) Render(_ context.Context, _ string) ([]byte, error) {
	r.calls++
	return r.body, r.err
}

func ballCells(first, last int) string {
	var b strings.Builder
	for i := first; i <= last; i++ {
		fmt.Fprintf(&b, "<td>%d</td>", i)
	}
	return b.String()
}

func drawTableRow(period string, super int) string {
	return fmt.Sprintf("<tr><td>%s</td>%s<td>%d</td></tr>", period, ballCells(1, 20), super)
}

func TestScrapeTableDocument(t *testing.T) {
	t.Parallel()

	html := "<html><body><table>" +
		"<tr><th>Period</th><th>Numbers</th></tr>" +
		drawTableRow("114046629", 42) +
		drawTableRow("114046630", 7) +
		"</table></body></html>"
	s := New(&fakeDocFetcher{body: []byte(html)}, nil, extract.NewNormalizer(), zap.NewNop())

	records, err := s.Scrape(context.Background(), "http://host/results")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "114046629", records[0].Period)
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, records[0].Balls)
	require.NotNil(t, records[0].Super)
	require.Equal(t, 42, *records[0].Super)
	require.Equal(t, "114046630", records[1].Period)
	require.Equal(t, 7, *records[1].Super)
}

func TestScrapeListDocument(t *testing.T) {
	t.Parallel()

	html := "<html><body><ul>" +
		"<li>Draw 114046629: " + strings.ReplaceAll(ballCells(1, 20), "td", "span") + " super 42</li>" +
		"</ul></body></html>"
	s := New(&fakeDocFetcher{body: []byte(html)}, nil, extract.NewNormalizer(), zap.NewNop())

	records, err := s.Scrape(context.Background(), "http://host/results")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "114046629", records[0].Period)
}

func TestScrapeLeafDivsOnly(t *testing.T) {
	t.Parallel()

	// Two draws inside a shared container div; only the leaf divs may
	// become regions or the draws would merge.
	html := "<html><body><div class=\"results\">" +
		"<div>114046629 " + strings.Join(ballStrings(1, 20), " ") + " 42</div>" +
		"<div>114046630 " + strings.Join(ballStrings(1, 20), " ") + " 7</div>" +
		"</div></body></html>"
	s := New(&fakeDocFetcher{body: []byte(html)}, nil, extract.NewNormalizer(), zap.NewNop())

	records, err := s.Scrape(context.Background(), "http://host/results")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "114046629", records[0].Period)
	require.Equal(t, "114046630", records[1].Period)
}

func ballStrings(first, last int) []string {
	out := make([]string, 0, last-first+1)
	for i := first; i <= last; i++ {
		out = append(out, fmt.Sprintf("%d", i))
	}
	return out
}

func TestScrapeDuplicatePeriodsFirstWins(t *testing.T) {
	t.Parallel()

	html := "<html><body><table>" +
		drawTableRow("114046629", 42) +
		drawTableRow("114046629", 9) +
		"</table></body></html>"
	s := New(&fakeDocFetcher{body: []byte(html)}, nil, extract.NewNormalizer(), zap.NewNop())

	records, err := s.Scrape(context.Background(), "http://host/results")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 42, *records[0].Super)
}

func TestScrapeEmptyDocumentWithoutRenderer(t *testing.T) {
	t.Parallel()

	s := New(&fakeDocFetcher{body: []byte("<html><body><p>maintenance</p></body></html>")}, nil, extract.NewNormalizer(), zap.NewNop())
	records, err := s.Scrape(context.Background(), "http://host/results")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestScrapeFallsBackToRenderer(t *testing.T) {
	t.Parallel()

	rendered := "<html><body><table>" + drawTableRow("114046629", 42) + "</table></body></html>"
	renderer := &fakeRenderer{body: []byte(rendered)}
	s := New(&fakeDocFetcher{body: []byte("<html><body></body></html>")}, renderer, extract.NewNormalizer(), zap.NewNop())

	records, err := s.Scrape(context.Background(), "http://host/results")
	require.NoError(t, err)
	require.Equal(t, 1, renderer.calls)
	require.Len(t, records, 1)
	require.Equal(t, "114046629", records[0].Period)
}

func TestScrapeStaticHitSkipsRenderer(t *testing.T) {
	t.Parallel()

	html := "<html><body><table>" + drawTableRow("114046629", 42) + "</table></body></html>"
	renderer := &fakeRenderer{body: []byte("<html></html>")}
	s := New(&fakeDocFetcher{body: []byte(html)}, renderer, extract.NewNormalizer(), zap.NewNop())

	_, err := s.Scrape(context.Background(), "http://host/results")
	require.NoError(t, err)
	require.Zero(t, renderer.calls)
}

func TestScrapeFetchError(t *testing.T) {
	t.Parallel()

	s := New(&fakeDocFetcher{err: errors.New("connection refused")}, nil, extract.NewNormalizer(), zap.NewNop())
	_, err := s.Scrape(context.Background(), "http://host/results")
	require.Error(t, err)
	require.Contains(t, err.Error(), "fetch document")
}

func TestScrapeIgnoresShortRegions(t *testing.T) {
	t.Parallel()

	// A period but only five ball tokens; the region must not qualify.
	html := "<html><body><table><tr><td>114046629</td>" + ballCells(1, 5) + "</tr></table></body></html>"
	s := New(&fakeDocFetcher{body: []byte(html)}, nil, extract.NewNormalizer(), zap.NewNop())

	records, err := s.Scrape(context.Background(), "http://host/results")
	require.NoError(t, err)
	require.Empty(t, records)
}

// Package scrape is the secondary, lower-confidence acquisition path: it
// pulls known HTML documents and mines them for draw records.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/bingokit/drawsync/internal/draw"
)

// DocumentFetcher retrieves one HTML document.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Renderer produces a DOM snapshot with JavaScript executed. Optional; nil
// means static HTML only.
type Renderer interface {
	Render(ctx context.Context, url string) ([]byte, error)
}

// RowNormalizer is the same output contract the API path uses; the scraper
// feeds it synthetic rows assembled from document text.
type RowNormalizer interface {
	Normalize(row any) (draw.Record, error)
}

// Scraper locates repeating document regions that carry both a period-like
// token and at least twenty in-range ball tokens, then normalizes each
// region through the shared contract.
type Scraper struct {
	fetcher    DocumentFetcher
	renderer   Renderer
	normalizer RowNormalizer
	logger     *zap.Logger
}

// New constructs a Scraper. renderer may be nil.
func New(fetcher DocumentFetcher, renderer Renderer, normalizer RowNormalizer, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		fetcher:    fetcher,
		renderer:   renderer,
		normalizer: normalizer,
		logger:     logger,
	}
}

// Scrape fetches url and extracts whatever records it can. When the static
// document yields nothing and a renderer is configured, the page is retried
// with JavaScript executed.
func (s *Scraper) Scrape(ctx context.Context, url string) ([]draw.Record, error) {
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch document %s: %w", url, err)
	}
	records := s.ExtractRecords(body)
	if len(records) > 0 || s.renderer == nil {
		return records, nil
	}

	s.logger.Debug("Static document empty; rendering with JS", zap.String("url", url))
	rendered, err := s.renderer.Render(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("render document %s: %w", url, err)
	}
	return s.ExtractRecords(rendered), nil
}

// Selectors probed for repeating regions, most specific first. The final
// catch-all picks up providers that render results as bare divs.
var regionSelectors = []string{"table tr", "li", "div"}

var numberToken = regexp.MustCompile(`[0-9]+`)

// ExtractRecords mines one document. Regions resolve independently; the
// first region claiming a period wins and later duplicates are dropped.
func (s *Scraper) ExtractRecords(body []byte) []draw.Record {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		s.logger.Warn("Document unparsable", zap.Error(err))
		return nil
	}

	seen := make(map[string]struct{})
	var records []draw.Record
	for _, selector := range regionSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if selector == "div" && sel.Find("div").Length() > 0 {
				// Only leaf divs; a container div would merge several draws
				// into one region.
				return
			}
			row, ok := regionRow(sel.Text())
			if !ok {
				return
			}
			rec, err := s.normalizer.Normalize(row)
			if err != nil {
				return
			}
			if _, dup := seen[rec.Period]; dup {
				return
			}
			seen[rec.Period] = struct{}{}
			records = append(records, rec)
		})
		if len(records) > 0 {
			return records
		}
	}
	return nil
}

// regionRow turns one region's text into a synthetic raw row. A region
// qualifies when it holds a period-like token (six or more digits) and at
// least twenty ball-sized tokens in range.
func regionRow(text string) (map[string]any, bool) {
	tokens := numberToken.FindAllString(text, -1)
	period := ""
	balls := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if period == "" && len(tok) >= 6 {
			period = tok
			continue
		}
		v, err := strconv.Atoi(tok)
		if err != nil || v < draw.BallMin || v > draw.BallMax {
			continue
		}
		balls = append(balls, tok)
	}
	if period == "" || len(balls) < draw.BallCount {
		return nil, false
	}
	return map[string]any{
		"period": period,
		"winNo":  strings.Join(balls, ","),
	}, true
}

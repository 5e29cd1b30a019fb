package engine

import (
	"context"
	"time"

	"github.com/bingokit/drawsync/internal/draw"
	"github.com/bingokit/drawsync/internal/transport"
)

// Fetcher executes one classified provider call.
type Fetcher interface {
	Fetch(ctx context.Context, method, url string, params map[string]string) transport.Result
}

// PayloadExtractor locates the row list and the total-count hint inside one
// raw response body. A decode failure or container miss is a nil row list,
// never an error.
type PayloadExtractor interface {
	ExtractRows(body []byte) (rows []any, totalHint int, hasHint bool)
}

// Normalizer turns one raw row into a canonical record or a rejection.
type Normalizer interface {
	Normalize(row any) (draw.Record, error)
}

// FallbackScraper is the lower-confidence secondary source: it fetches one
// HTML document and returns whatever records it can assemble from it. It
// implements the same output contract as the Normalizer.
type FallbackScraper interface {
	Scrape(ctx context.Context, url string) ([]draw.Record, error)
}

// Publisher pushes run-completion events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Archiver keeps raw winning payloads for schema-drift forensics.
type Archiver interface {
	Archive(ctx context.Context, path string, data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	NewID() (string, error)
}

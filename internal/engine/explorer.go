package engine

// Dimensions holds the configured candidate lists for each request-shape
// axis. They are data, not code: operators extend them in config when the
// provider drifts again. An empty axis yields an empty candidate space.
type Dimensions struct {
	Endpoints   []string
	DateKeys    []string
	DateFormats []DateFormat
	PageKeys    []string
	Methods     []string
	PageOrigins []int
}

// DefaultDimensions returns the axes observed across provider revisions.
func DefaultDimensions() Dimensions {
	return Dimensions{
		DateKeys:    []string{"date", "openDate", "drawDate", "dailyDate"},
		DateFormats: []DateFormat{DateFormatISO, DateFormatSlash, DateFormatROC},
		PageKeys:    []string{"pageNum", "page", "pageNo"},
		Methods:     []string{"GET", "POST"},
		PageOrigins: []int{1, 0},
	}
}

// Total returns the size of the cartesian candidate space.
func (d Dimensions) Total() int {
	return len(d.Endpoints) * len(d.DateKeys) * len(d.DateFormats) *
		len(d.PageKeys) * len(d.Methods) * len(d.PageOrigins)
}

// Explorer walks the cartesian product of the configured dimensions lazily,
// in a stable order: endpoints vary slowest, page origins fastest. The
// sequence is deterministic run-to-run so tests can assert exact ordering
// and the orchestrator can early-exit cleanly.
type Explorer struct {
	dims Dimensions
	idx  int
}

// NewExplorer builds an Explorer over dims.
func NewExplorer(dims Dimensions) *Explorer {
	return &Explorer{dims: dims}
}

// Next returns the next candidate shape, or false when the space is exhausted.
func (e *Explorer) Next() (Shape, bool) {
	if e.idx >= e.dims.Total() {
		return Shape{}, false
	}
	i := e.idx
	e.idx++

	d := e.dims
	origin := i % len(d.PageOrigins)
	i /= len(d.PageOrigins)
	method := i % len(d.Methods)
	i /= len(d.Methods)
	pageKey := i % len(d.PageKeys)
	i /= len(d.PageKeys)
	dateFormat := i % len(d.DateFormats)
	i /= len(d.DateFormats)
	dateKey := i % len(d.DateKeys)
	i /= len(d.DateKeys)
	endpoint := i

	return Shape{
		Endpoint:   d.Endpoints[endpoint],
		DateKey:    d.DateKeys[dateKey],
		DateFormat: d.DateFormats[dateFormat],
		PageKey:    d.PageKeys[pageKey],
		Method:     d.Methods[method],
		PageOrigin: d.PageOrigins[origin],
	}, true
}

// Reset rewinds the explorer to the start of the sequence.
func (e *Explorer) Reset() {
	e.idx = 0
}

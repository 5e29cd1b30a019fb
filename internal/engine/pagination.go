package engine

// PageState summarizes a pagination run against one pinned shape.
type PageState struct {
	Pages        int  // pages fetched so far
	LastRowCount int  // extracted rows on the most recent page
	Accumulated  int  // extracted rows across all pages
	TotalHint    int  // provider's total-count claim, when present
	HasHint      bool
}

// Paginator decides whether a pagination run continues. Stop conditions in
// priority order: the provider's total-count hint, the row-count-shortfall
// heuristic, and the hard max-page ceiling. The ceiling always terminates
// the loop no matter what the server claims.
type Paginator struct {
	PageSize int
	MaxPages int
}

// ShouldContinue reports whether the next page is worth fetching.
func (p Paginator) ShouldContinue(s PageState) bool {
	if s.Pages >= p.MaxPages {
		return false
	}
	if s.LastRowCount == 0 {
		return false
	}
	if s.HasHint {
		return s.Accumulated < s.TotalHint
	}
	return s.LastRowCount >= p.PageSize
}

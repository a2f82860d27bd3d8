// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the wos-client session
// and export subsystems.
// Implements: prd001-filter (FilterClause);
//
//	prd002-session (ResultSet, PaperRecord);
//	prd003-export (JobStatus, JobProgress).
//
// See docs/ARCHITECTURE.md § Data Structures.
package types

// PageSize is the fixed number of records shown per result page.
const PageSize = 10

// ResultSet holds one executed search: the server-bounded item list, the
// optional total match count, and the selected page. The backend caps
// Items independently of the true match count; TotalMatched is set only
// when the server reported more matches than it returned.
type ResultSet struct {
	Items        []PaperRecord `json:"items"`
	TotalMatched int           `json:"total_matched,omitempty"`
	CurrentPage  int           `json:"current_page"`
}

// PageCount returns the number of pages the loaded items span. An empty
// set still has one (empty) page.
func (r ResultSet) PageCount() int {
	if len(r.Items) == 0 {
		return 1
	}
	return (len(r.Items) + PageSize - 1) / PageSize
}

// Page returns the items on page k (1-based): the window
// [(k-1)*PageSize, k*PageSize) clamped to the item count.
func (r ResultSet) Page(k int) []PaperRecord {
	if k < 1 {
		k = 1
	}
	lo := (k - 1) * PageSize
	if lo >= len(r.Items) {
		return nil
	}
	hi := lo + PageSize
	if hi > len(r.Items) {
		hi = len(r.Items)
	}
	return r.Items[lo:hi]
}

// Truncated reports whether the server returned fewer items than matched.
func (r ResultSet) Truncated() bool {
	return r.TotalMatched > len(r.Items)
}

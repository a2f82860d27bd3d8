// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session owns one search-result session: executing a filter
// set, bounding and paginating the result, and keeping the session
// restorable across invocations through the durable store.
// Implements: prd002-session (R1-R4);
//
//	docs/ARCHITECTURE § Search Session.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/pdiddy/wos-client/internal/filter"
	"github.com/pdiddy/wos-client/internal/store"
	"github.com/pdiddy/wos-client/pkg/types"
)

// ErrBusy is returned when an execute is requested while a previous one
// has not settled. Re-submission is gated, not queued.
var ErrBusy = errors.New("search already in flight")

// ErrNoResults is returned by page operations before any search ran.
var ErrNoResults = errors.New("no search results loaded")

// Searcher is the backend slice the session needs.
type Searcher interface {
	Search(ctx context.Context, clauses []types.FilterClause) ([]types.PaperRecord, int, error)
	SearchByYear(ctx context.Context, clauses []types.FilterClause, startYear, endYear int) ([]types.PaperRecord, int, error)
}

// Store is the persistence slice the session needs. Every successful
// execute writes through it; only Restore reads it.
type Store interface {
	SaveSession(ctx context.Context, snap store.Snapshot) error
	LoadCurrent(ctx context.Context) (store.Snapshot, error)
}

// Session holds the filter set and the current result set. All mutation
// goes through named operations; the result set is replaced wholesale by
// a successful execute and never partially merged.
type Session struct {
	searcher Searcher
	store    Store

	mu      sync.Mutex
	busy    bool
	key     string
	filters *filter.Set
	results *types.ResultSet
}

// New returns an empty session with a fresh key and a default filter set.
func New(searcher Searcher, st Store) *Session {
	return &Session{
		searcher: searcher,
		store:    st,
		key:      uuid.NewString(),
		filters:  filter.New(),
	}
}

// Filters returns the live filter set for editing.
func (s *Session) Filters() *filter.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// SetFilters replaces the filter set, e.g. from parsed CLI terms.
func (s *Session) SetFilters(f *filter.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = f
}

// Results returns a copy of the current result set, or ok=false before
// any search has run or been restored.
func (s *Session) Results() (types.ResultSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.results == nil {
		return types.ResultSet{}, false
	}
	return *s.results, true
}

// Restore adopts the persisted session, if any. It runs only when the
// session holds nothing in memory, so it can never overwrite a freshly
// executed search. The restored filters and results are taken verbatim
// with no re-validation. Returns false when nothing was persisted.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.results != nil {
		return false, nil
	}

	snap, err := s.store.LoadCurrent(ctx)
	if errors.Is(err, store.ErrNoSession) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.key = snap.Key
	s.filters = filter.FromClauses(snap.Filters)
	rs := snap.Results
	if rs.CurrentPage < 1 {
		rs.CurrentPage = 1
	}
	s.results = &rs
	return true, nil
}

// Execute validates the filter set, sends it to the search endpoint, and
// on success replaces the stored result set wholesale with the page
// reset to 1. On any failure the previous result set and page are left
// untouched. Validation failures never reach the network.
func (s *Session) Execute(ctx context.Context) error {
	return s.execute(ctx, func(clauses []types.FilterClause) ([]types.PaperRecord, int, error) {
		return s.searcher.Search(ctx, clauses)
	})
}

// ExecuteYearRange runs the year-partitioned search variant. Zero years
// select the backend's default range.
func (s *Session) ExecuteYearRange(ctx context.Context, startYear, endYear int) error {
	return s.execute(ctx, func(clauses []types.FilterClause) ([]types.PaperRecord, int, error) {
		return s.searcher.SearchByYear(ctx, clauses, startYear, endYear)
	})
}

func (s *Session) execute(ctx context.Context, run func([]types.FilterClause) ([]types.PaperRecord, int, error)) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	clauses := s.filters.Serialize()
	validateErr := s.filters.Validate()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	if validateErr != nil {
		return validateErr
	}

	items, count, err := run(clauses)
	if err != nil {
		return err
	}

	rs := types.ResultSet{Items: items, CurrentPage: 1}
	if count > len(items) {
		rs.TotalMatched = count
	}

	s.mu.Lock()
	s.results = &rs
	s.mu.Unlock()

	return s.persist(ctx)
}

// ChangePage selects page k, clamped to [1, PageCount], and mirrors it
// into the shareable location.
func (s *Session) ChangePage(ctx context.Context, k int) error {
	s.mu.Lock()
	if s.results == nil {
		s.mu.Unlock()
		return ErrNoResults
	}
	if k < 1 {
		k = 1
	}
	if max := s.results.PageCount(); k > max {
		k = max
	}
	s.results.CurrentPage = k
	s.mu.Unlock()

	return s.persist(ctx)
}

// PageItems returns the items on the current page.
func (s *Session) PageItems() ([]types.PaperRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.results == nil {
		return nil, ErrNoResults
	}
	return s.results.Page(s.results.CurrentPage), nil
}

// FindRecord looks the identifier up in the loaded result set. A hit
// lets callers skip the record endpoint for anything already on screen.
func (s *Session) FindRecord(uid string) (types.PaperRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.results == nil {
		return types.PaperRecord{}, false
	}
	for _, rec := range s.results.Items {
		if rec.UID == uid {
			return rec, true
		}
	}
	return types.PaperRecord{}, false
}

// ShareLink returns the shareable location for the current page, so a
// reloaded or shared link reproduces the same view.
func (s *Session) ShareLink() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	page := 1
	if s.results != nil {
		page = s.results.CurrentPage
	}
	return fmt.Sprintf("/searchResult?page=%d", page)
}

// persist writes the current filters and results through to the durable
// store, overwriting any prior entry. Called after every successful
// execute and page change.
func (s *Session) persist(ctx context.Context) error {
	s.mu.Lock()
	snap := store.Snapshot{
		Key:     s.key,
		Filters: s.filters.Serialize(),
	}
	if s.results != nil {
		snap.Results = *s.results
	}
	page := snap.Results.CurrentPage
	if page < 1 {
		page = 1
	}
	snap.Location = fmt.Sprintf("/searchResult?page=%d", page)
	s.mu.Unlock()

	if err := s.store.SaveSession(ctx, snap); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package detail

import (
	"context"
	"testing"

	"github.com/pdiddy/wos-client/internal/store"
	"github.com/pdiddy/wos-client/pkg/types"
)

type countingFetcher struct {
	calls     int
	records   map[string]types.PaperRecord
	queryTime float64
}

func (f *countingFetcher) RecordByID(_ context.Context, id string) (*types.PaperRecord, float64, error) {
	f.calls++
	rec, ok := f.records[id]
	if !ok {
		return nil, 0, &notFoundError{id: id}
	}
	return &rec, f.queryTime, nil
}

type notFoundError struct{ id string }

func (e *notFoundError) Error() string { return "record " + e.id + " not found" }

func testCache(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(types.SessionConfig{StoreDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestResolveFastPathSkipsNetwork(t *testing.T) {
	fetcher := &countingFetcher{}
	r := New(fetcher, testCache(t))

	rec, err := r.Resolve(context.Background(), types.PaperRecord{UID: "WOS:1", ArticleTitle: "A"})
	if err != nil {
		t.Fatal(err)
	}
	if rec.ArticleTitle != "A" {
		t.Errorf("record = %+v", rec)
	}
	if fetcher.calls != 0 {
		t.Errorf("fetcher called %d times, want 0", fetcher.calls)
	}
}

func TestResolveRejectsAnonymousRecord(t *testing.T) {
	r := New(&countingFetcher{}, nil)
	if _, err := r.Resolve(context.Background(), types.PaperRecord{}); err == nil {
		t.Fatal("want error for record without identifier")
	}
}

func TestResolveByIDFetchesOnceThenCaches(t *testing.T) {
	fetcher := &countingFetcher{records: map[string]types.PaperRecord{
		"WOS:1": {UID: "WOS:1", ArticleTitle: "A"},
	}}
	r := New(fetcher, testCache(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rec, err := r.ResolveByID(ctx, "WOS:1")
		if err != nil {
			t.Fatal(err)
		}
		if rec.ArticleTitle != "A" {
			t.Errorf("record = %+v", rec)
		}
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times, want 1", fetcher.calls)
	}
}

func TestResolveByIDFastPathSeedsCache(t *testing.T) {
	fetcher := &countingFetcher{}
	r := New(fetcher, testCache(t))
	ctx := context.Background()

	// A record handed over from the result list should satisfy a later
	// by-identifier lookup without any fetch.
	if _, err := r.Resolve(ctx, types.PaperRecord{UID: "WOS:7", ArticleTitle: "Seeded"}); err != nil {
		t.Fatal(err)
	}
	rec, err := r.ResolveByID(ctx, "WOS:7")
	if err != nil {
		t.Fatal(err)
	}
	if rec.ArticleTitle != "Seeded" {
		t.Errorf("record = %+v", rec)
	}
	if fetcher.calls != 0 {
		t.Errorf("fetcher called %d times, want 0", fetcher.calls)
	}
}

// recordingCache captures SaveRecord arguments for inspection.
type recordingCache struct {
	recs      map[string]types.PaperRecord
	queryTime map[string]float64
}

func (c *recordingCache) LoadRecord(_ context.Context, uid string) (*types.PaperRecord, bool, error) {
	rec, ok := c.recs[uid]
	if !ok {
		return nil, false, nil
	}
	return &rec, true, nil
}

func (c *recordingCache) SaveRecord(_ context.Context, rec types.PaperRecord, queryTime float64) error {
	if c.recs == nil {
		c.recs = map[string]types.PaperRecord{}
		c.queryTime = map[string]float64{}
	}
	c.recs[rec.UID] = rec
	c.queryTime[rec.UID] = queryTime
	return nil
}

func TestResolveByIDCachesServerQueryTime(t *testing.T) {
	fetcher := &countingFetcher{
		records:   map[string]types.PaperRecord{"WOS:1": {UID: "WOS:1", ArticleTitle: "A"}},
		queryTime: 0.02,
	}
	cache := &recordingCache{}
	r := New(fetcher, cache)

	if _, err := r.ResolveByID(context.Background(), "WOS:1"); err != nil {
		t.Fatal(err)
	}
	if got := cache.queryTime["WOS:1"]; got != 0.02 {
		t.Errorf("cached query time = %v, want 0.02", got)
	}
}

func TestResolveByIDPropagatesNotFound(t *testing.T) {
	fetcher := &countingFetcher{}
	r := New(fetcher, testCache(t))

	if _, err := r.ResolveByID(context.Background(), "WOS:missing"); err == nil {
		t.Fatal("want error for unknown record")
	}
}

func TestShareLink(t *testing.T) {
	if got := ShareLink("WOS:1"); got != "/detail?uid=WOS:1" {
		t.Errorf("ShareLink = %q", got)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package detail resolves single records for the detail view: either
// from a value handed over by the result list (fast path, no network) or
// by identifier through a local cache backed by the record endpoint.
// Implements: prd004-detail;
//
//	docs/ARCHITECTURE § Detail Boundary.
package detail

import (
	"context"
	"fmt"

	"github.com/pdiddy/wos-client/pkg/types"
)

// Fetcher is the backend slice the resolver needs.
type Fetcher interface {
	RecordByID(ctx context.Context, id string) (*types.PaperRecord, float64, error)
}

// Cache is the session-store slice the resolver needs.
type Cache interface {
	LoadRecord(ctx context.Context, uid string) (*types.PaperRecord, bool, error)
	SaveRecord(ctx context.Context, rec types.PaperRecord, queryTime float64) error
}

// Resolver resolves records by identifier with a durable cache, so a
// revisited share link does not refetch.
type Resolver struct {
	fetcher Fetcher
	cache   Cache
}

// New returns a Resolver. cache may be nil, which disables caching.
func New(fetcher Fetcher, cache Cache) *Resolver {
	return &Resolver{fetcher: fetcher, cache: cache}
}

// Resolve is the fast path: a record handed over in memory is returned
// as-is after cache write-through, with no network call.
func (r *Resolver) Resolve(ctx context.Context, rec types.PaperRecord) (*types.PaperRecord, error) {
	if rec.UID == "" {
		return nil, fmt.Errorf("record has no identifier")
	}
	if r.cache != nil {
		// Best effort; a failed cache write does not block the view.
		_ = r.cache.SaveRecord(ctx, rec, 0)
	}
	return &rec, nil
}

// ResolveByID is the slow path: cache first, then the record endpoint.
// A fetched record is cached under its identifier.
func (r *Resolver) ResolveByID(ctx context.Context, id string) (*types.PaperRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("empty record identifier")
	}

	if r.cache != nil {
		if rec, ok, err := r.cache.LoadRecord(ctx, id); err == nil && ok {
			return rec, nil
		}
	}

	rec, queryTime, err := r.fetcher.RecordByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		_ = r.cache.SaveRecord(ctx, *rec, queryTime)
	}
	return rec, nil
}

// ShareLink returns the shareable detail location for a record.
func ShareLink(uid string) string {
	return "/detail?uid=" + uid
}

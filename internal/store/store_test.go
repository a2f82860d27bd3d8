// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wos-client/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.SessionConfig{StoreDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testSnapshot(key string) Snapshot {
	return Snapshot{
		Key: key,
		Filters: []types.FilterClause{
			{ID: 1, Connector: types.ConnectorAnd, Field: types.FieldTopic, Value: "graphene"},
		},
		Results: types.ResultSet{
			Items:        []types.PaperRecord{{UID: "WOS:1", ArticleTitle: "A"}, {UID: "WOS:2"}},
			TotalMatched: 137,
			CurrentPage:  3,
		},
		Location: "/searchResult?page=3",
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSession(ctx, testSnapshot("sess-1")))

	got, err := s.LoadCurrent(ctx)
	require.NoError(t, err)

	assert.Equal(t, "sess-1", got.Key)
	require.Len(t, got.Filters, 1)
	assert.Equal(t, "graphene", got.Filters[0].Value)
	assert.Equal(t, types.FieldTopic, got.Filters[0].Field)
	require.Len(t, got.Results.Items, 2)
	assert.Equal(t, "A", got.Results.Items[0].ArticleTitle)
	assert.Equal(t, 137, got.Results.TotalMatched)
	assert.Equal(t, 3, got.Results.CurrentPage)
	assert.Equal(t, "/searchResult?page=3", got.Location)
	assert.False(t, got.SavedAt.IsZero())
}

func TestLoadCurrentEmpty(t *testing.T) {
	s := testStore(t)
	_, err := s.LoadCurrent(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSaveSessionOverwrites(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSession(ctx, testSnapshot("sess-1")))

	next := testSnapshot("sess-1")
	next.Results.Items = []types.PaperRecord{{UID: "WOS:9"}}
	next.Results.TotalMatched = 0
	next.Results.CurrentPage = 1
	require.NoError(t, s.SaveSession(ctx, next))

	got, err := s.LoadCurrent(ctx)
	require.NoError(t, err)
	require.Len(t, got.Results.Items, 1)
	assert.Equal(t, "WOS:9", got.Results.Items[0].UID)
	assert.Equal(t, 0, got.Results.TotalMatched)
	assert.Equal(t, 1, got.Results.CurrentPage)
}

func TestCurrentSessionFollowsLatestSave(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSession(ctx, testSnapshot("sess-1")))
	require.NoError(t, s.SaveSession(ctx, testSnapshot("sess-2")))

	got, err := s.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sess-2", got.Key)
}

func TestSaveSessionPrunesSuperseded(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, key := range []string{"sess-1", "sess-2", "sess-3"} {
		require.NoError(t, s.SaveSession(ctx, testSnapshot(key)))
	}

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n))
	assert.Equal(t, 1, n, "superseded session rows kept")

	got, err := s.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sess-3", got.Key)
}

func TestRecordCacheRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rec := types.PaperRecord{UID: "WOS:1", ArticleTitle: "A", DOI: "10.1/abc"}
	require.NoError(t, s.SaveRecord(ctx, rec, 0.02))

	got, ok, err := s.LoadRecord(ctx, "WOS:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A", got.ArticleTitle)
	assert.Equal(t, "10.1/abc", got.DOI)

	_, ok, err = s.LoadRecord(ctx, "WOS:missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveRecordRequiresIdentifier(t *testing.T) {
	s := testStore(t)
	err := s.SaveRecord(context.Background(), types.PaperRecord{}, 0)
	assert.Error(t, err)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/wos-client/pkg/types"
)

func TestQueryFileRoundTrip(t *testing.T) {
	set := New()
	set.SetField(1, types.FieldTopic)
	set.SetValue(1, "graphene")
	id := set.Add()
	set.SetConnector(id, types.ConnectorOr)
	set.SetField(id, types.FieldTitle)
	set.SetValue(id, "transistor")

	path := filepath.Join(t.TempDir(), "query.yaml")
	if err := WriteQueryFile(path, set, 1970, 1979); err != nil {
		t.Fatalf("WriteQueryFile() error = %v", err)
	}

	qf, err := ReadQueryFile(path)
	if err != nil {
		t.Fatalf("ReadQueryFile() error = %v", err)
	}
	if qf.StartYear != 1970 || qf.EndYear != 1979 {
		t.Errorf("year window = %d..%d, want 1970..1979", qf.StartYear, qf.EndYear)
	}

	loaded, err := qf.ToSet()
	if err != nil {
		t.Fatalf("ToSet() error = %v", err)
	}
	got := loaded.Clauses()
	want := set.Clauses()
	if len(got) != len(want) {
		t.Fatalf("clause count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("clause %d = %+v, want %+v", i+1, got[i], want[i])
		}
	}
}

func TestQueryFileFieldNamesCaseInsensitive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.yaml")
	contents := "clauses:\n  - field: Topic\n    value: laser\n  - connector: or\n    field: JOURNAL\n    value: nature\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	qf, err := ReadQueryFile(path)
	if err != nil {
		t.Fatalf("ReadQueryFile() error = %v", err)
	}
	set, err := qf.ToSet()
	if err != nil {
		t.Fatalf("ToSet() error = %v", err)
	}
	clauses := set.Clauses()
	if clauses[0].Field != types.FieldTopic {
		t.Errorf("clause 1 field = %v, want topic", clauses[0].Field)
	}
	if clauses[1].Field != types.FieldSource || clauses[1].Connector != types.ConnectorOr {
		t.Errorf("clause 2 = %+v, want OR source", clauses[1])
	}
}

func TestReadQueryFileRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.yaml")
	if err := os.WriteFile(path, []byte("clauses: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadQueryFile(path); err == nil {
		t.Fatal("ReadQueryFile() accepted a file with no clauses")
	}
}

func TestReadQueryFileUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.yaml")
	if err := os.WriteFile(path, []byte("clauses:\n  - field: impact\n    value: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	qf, err := ReadQueryFile(path)
	if err != nil {
		t.Fatalf("ReadQueryFile() error = %v", err)
	}
	if _, err := qf.ToSet(); err == nil {
		t.Fatal("ToSet() accepted an unknown field name")
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wos-client/pkg/types"
)

// QueryFile is the on-disk representation of a saved query. A user can
// keep a complex multi-clause query in a file and rerun it later without
// retyping the clauses.
type QueryFile struct {
	Clauses   []QueryClause `yaml:"clauses"`
	StartYear int           `yaml:"start_year,omitempty"`
	EndYear   int           `yaml:"end_year,omitempty"`
	SavedAt   time.Time     `yaml:"saved_at,omitempty"`
}

// QueryClause stores one clause with human-readable connector and field
// names instead of wire codes.
type QueryClause struct {
	Connector string `yaml:"connector,omitempty"`
	Field     string `yaml:"field"`
	Value     string `yaml:"value"`
}

// WriteQueryFile saves the filter set and its year window to a YAML file.
func WriteQueryFile(path string, set *Set, startYear, endYear int) error {
	qf := QueryFile{
		StartYear: startYear,
		EndYear:   endYear,
		SavedAt:   time.Now(),
	}
	for _, c := range set.Clauses() {
		qf.Clauses = append(qf.Clauses, QueryClause{
			Connector: string(c.Connector),
			Field:     c.Field.String(),
			Value:     c.Value,
		})
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	if len(qf.Clauses) == 0 {
		return nil, fmt.Errorf("query file %s holds no clauses", path)
	}
	return &qf, nil
}

// ToSet converts the stored clauses back into a filter set.
func (qf *QueryFile) ToSet() (*Set, error) {
	clauses := make([]types.FilterClause, 0, len(qf.Clauses))
	for i, qc := range qf.Clauses {
		field, err := types.ParseField(strings.ToLower(strings.TrimSpace(qc.Field)))
		if err != nil {
			return nil, fmt.Errorf("clause %d: %w", i+1, err)
		}
		conn := types.ConnectorAnd
		if strings.EqualFold(qc.Connector, string(types.ConnectorOr)) {
			conn = types.ConnectorOr
		}
		clauses = append(clauses, types.FilterClause{
			ID:        i + 1,
			Connector: conn,
			Field:     field,
			Value:     qc.Value,
		})
	}
	return FromClauses(clauses), nil
}

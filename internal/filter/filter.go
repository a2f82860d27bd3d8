// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter holds the multi-clause boolean query model behind the
// advanced search form.
// Implements: prd001-filter (R1-R4);
//
//	docs/ARCHITECTURE § Filter Model.
package filter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/wos-client/pkg/types"
)

// ValidationError reports a clause that would produce an invalid query.
// Validation failures are resolved locally; a set that fails Validate
// must never be sent to the backend.
type ValidationError struct {
	ClauseID int
	Field    types.Field
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("clause %d (%s): value is empty", e.ClauseID, e.Field)
}

// Set is an ordered, dense-indexed sequence of filter clauses. A Set
// always holds at least one clause, and clause IDs are exactly 1..n
// after any mutation. The zero value is not usable; call New.
type Set struct {
	clauses []types.FilterClause
}

// defaultClause is the state of a freshly added condition row.
func defaultClause(id int) types.FilterClause {
	return types.FilterClause{
		ID:        id,
		Connector: types.ConnectorAnd,
		Field:     types.FieldTopic,
		Value:     "",
	}
}

// New returns a Set holding one default clause.
func New() *Set {
	return &Set{clauses: []types.FilterClause{defaultClause(1)}}
}

// FromClauses adopts the given clauses verbatim, renumbering them 1..n.
// Used when restoring a persisted session. An empty input yields the
// default single-clause set.
func FromClauses(clauses []types.FilterClause) *Set {
	if len(clauses) == 0 {
		return New()
	}
	s := &Set{clauses: append([]types.FilterClause(nil), clauses...)}
	s.renumber()
	return s
}

// Len returns the number of clauses.
func (s *Set) Len() int { return len(s.clauses) }

// Clauses returns a copy of the clause sequence in order.
func (s *Set) Clauses() []types.FilterClause {
	return append([]types.FilterClause(nil), s.clauses...)
}

// Add appends a clause with default connector, field, and empty value.
// It always succeeds and returns the new clause's ID.
func (s *Set) Add() int {
	id := len(s.clauses) + 1
	s.clauses = append(s.clauses, defaultClause(id))
	return id
}

// Remove deletes the clause with the given ID and renumbers the rest,
// preserving relative order. Removing the last remaining clause, or an
// unknown ID, is a no-op: a Set never drops below one clause.
func (s *Set) Remove(id int) {
	if len(s.clauses) == 1 {
		return
	}
	for i, c := range s.clauses {
		if c.ID == id {
			s.clauses = append(s.clauses[:i], s.clauses[i+1:]...)
			s.renumber()
			return
		}
	}
}

// Clear resets the set to a single default clause.
func (s *Set) Clear() {
	s.clauses = []types.FilterClause{defaultClause(1)}
}

// SetConnector replaces the connector of one clause. Unknown IDs are
// ignored; there is no cross-clause validation at edit time.
func (s *Set) SetConnector(id int, conn types.Connector) {
	if c := s.find(id); c != nil {
		c.Connector = conn
	}
}

// SetField replaces the field of one clause.
func (s *Set) SetField(id int, field types.Field) {
	if c := s.find(id); c != nil {
		c.Field = field
	}
}

// SetValue replaces the value text of one clause.
func (s *Set) SetValue(id int, value string) {
	if c := s.find(id); c != nil {
		c.Value = value
	}
}

// Validate checks that every clause has a non-blank value after
// trimming. It returns a ValidationError for the first offending clause;
// callers must block submission on failure without a network call.
func (s *Set) Validate() error {
	for _, c := range s.clauses {
		if strings.TrimSpace(c.Value) == "" {
			return &ValidationError{ClauseID: c.ID, Field: c.Field}
		}
	}
	return nil
}

// Serialize returns the ordered clause sequence verbatim as the wire
// payload, including the unused connector of clause 1. It is a pure
// function of the current state.
func (s *Set) Serialize() []types.FilterClause {
	return s.Clauses()
}

// MarshalJSON encodes the set as the backend's clause array.
func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.clauses)
}

// UnmarshalJSON decodes a persisted clause array.
func (s *Set) UnmarshalJSON(data []byte) error {
	var clauses []types.FilterClause
	if err := json.Unmarshal(data, &clauses); err != nil {
		return err
	}
	if len(clauses) == 0 {
		clauses = []types.FilterClause{defaultClause(1)}
	}
	s.clauses = clauses
	s.renumber()
	return nil
}

// String renders the set for display, e.g.
// "topic=graphene AND year=2020".
func (s *Set) String() string {
	var b strings.Builder
	for i, c := range s.clauses {
		if i > 0 {
			fmt.Fprintf(&b, " %s ", c.Connector)
		}
		fmt.Fprintf(&b, "%s=%s", c.Field, c.Value)
	}
	return b.String()
}

func (s *Set) find(id int) *types.FilterClause {
	for i := range s.clauses {
		if s.clauses[i].ID == id {
			return &s.clauses[i]
		}
	}
	return nil
}

func (s *Set) renumber() {
	for i := range s.clauses {
		s.clauses[i].ID = i + 1
	}
}

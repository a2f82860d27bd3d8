// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
)

// Connector joins a filter clause to the clause before it.
type Connector string

const (
	ConnectorAnd Connector = "AND"
	ConnectorOr  Connector = "OR"
)

// Field identifies the bibliographic field a clause matches against.
// The numeric codes are part of the wire contract with the backend.
type Field int

const (
	FieldTopic         Field = 1
	FieldTitle         Field = 2
	FieldAuthor        Field = 3
	FieldSource        Field = 4
	FieldYearPublished Field = 5
	FieldDOI           Field = 6
)

func (f Field) String() string {
	switch f {
	case FieldTopic:
		return "topic"
	case FieldTitle:
		return "title"
	case FieldAuthor:
		return "author"
	case FieldSource:
		return "source"
	case FieldYearPublished:
		return "year"
	case FieldDOI:
		return "doi"
	default:
		return "unknown"
	}
}

// ParseField maps a field name (as accepted on the CLI) to its code.
func ParseField(name string) (Field, error) {
	switch name {
	case "topic":
		return FieldTopic, nil
	case "title":
		return FieldTitle, nil
	case "author":
		return FieldAuthor, nil
	case "source", "journal":
		return FieldSource, nil
	case "year":
		return FieldYearPublished, nil
	case "doi":
		return FieldDOI, nil
	default:
		return 0, fmt.Errorf("unknown search field %q (want topic, title, author, source, year, or doi)", name)
	}
}

// FilterClause is one boolean-joined field/value condition in a query.
// The connector of the first clause is carried but never applied; the
// backend skips it when compiling the effective query.
type FilterClause struct {
	ID        int
	Connector Connector
	Field     Field
	Value     string
}

// wireClause is the JSON shape the search and export endpoints consume:
// {"id":1,"selects":["AND",1],"input":"graphene"}.
type wireClause struct {
	ID      int    `json:"id"`
	Selects [2]any `json:"selects"`
	Input   string `json:"input"`
}

// MarshalJSON encodes the clause in the backend wire shape.
func (c FilterClause) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireClause{
		ID:      c.ID,
		Selects: [2]any{string(c.Connector), int(c.Field)},
		Input:   c.Value,
	})
}

// UnmarshalJSON decodes the backend wire shape back into a clause.
func (c *FilterClause) UnmarshalJSON(data []byte) error {
	var w struct {
		ID      int               `json:"id"`
		Selects []json.RawMessage `json:"selects"`
		Input   string            `json:"input"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if len(w.Selects) != 2 {
		return fmt.Errorf("filter clause %d: selects has %d elements, want 2", w.ID, len(w.Selects))
	}

	var conn string
	if err := json.Unmarshal(w.Selects[0], &conn); err != nil {
		return fmt.Errorf("filter clause %d: connector: %w", w.ID, err)
	}
	var field int
	if err := json.Unmarshal(w.Selects[1], &field); err != nil {
		return fmt.Errorf("filter clause %d: field code: %w", w.ID, err)
	}

	c.ID = w.ID
	c.Connector = Connector(conn)
	c.Field = Field(field)
	c.Value = w.Input
	return nil
}

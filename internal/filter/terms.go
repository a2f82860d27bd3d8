// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"fmt"
	"strings"

	"github.com/pdiddy/wos-client/pkg/types"
)

// FromTerms builds a Set from CLI query terms. Each term has the form
// "field=value" with an optional "or:" prefix to join it to the previous
// term with OR instead of AND:
//
//	topic=graphene or:topic=fullerene author=Smith
//
// The connector on the first term is accepted but has no effect.
func FromTerms(terms []string) (*Set, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("no query terms: provide at least one field=value term")
	}

	s := &Set{}
	for i, term := range terms {
		conn := types.ConnectorAnd
		rest := term
		switch {
		case strings.HasPrefix(term, "or:"):
			conn = types.ConnectorOr
			rest = strings.TrimPrefix(term, "or:")
		case strings.HasPrefix(term, "and:"):
			rest = strings.TrimPrefix(term, "and:")
		}

		name, value, ok := strings.Cut(rest, "=")
		if !ok {
			return nil, fmt.Errorf("term %q: want field=value", term)
		}
		field, err := types.ParseField(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			return nil, fmt.Errorf("term %q: %w", term, err)
		}

		s.clauses = append(s.clauses, types.FilterClause{
			ID:        i + 1,
			Connector: conn,
			Field:     field,
			Value:     strings.TrimSpace(value),
		})
	}
	return s, nil
}

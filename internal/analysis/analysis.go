// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis runs the backend's disciplinary analysis: one keyword
// plus a year range in, a multi-dimensional summary out (yearly trend,
// country and journal distributions, top authors and institutions,
// keyword trends, corpus totals).
// Implements: prd005-analysis.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Errors reported before any network call is made.
var (
	ErrEmptyKeyword = errors.New("analysis keyword must not be blank")
	ErrInvalidYears = errors.New("start year must not be after end year")
	ErrMissingYears = errors.New("both start and end year are required")
)

// AuthorAnalysis ranks the most prolific authors and institutions.
type AuthorAnalysis struct {
	TopAuthors      map[string]int `json:"topAuthors"`
	TopInstitutions map[string]int `json:"topInstitutions"`
}

// Summary carries corpus-wide totals for the analyzed window.
type Summary struct {
	TotalPapers     int      `json:"totalPapers"`
	UniqueAuthors   int      `json:"uniqueAuthors"`
	UniqueJournals  int      `json:"uniqueJournals"`
	UniqueCountries int      `json:"uniqueCountries"`
	YearRange       []string `json:"yearRange"`
}

// Result is the backend's analysis response. Maps arrive in server
// order-agnostic JSON; use the sorted accessors for stable display.
type Result struct {
	YearlyTrend         map[string]int            `json:"yearlyTrend"`
	CountryDistribution map[string]int            `json:"countryDistribution"`
	JournalDistribution map[string]int            `json:"journalDistribution"`
	AuthorAnalysis      AuthorAnalysis            `json:"authorAnalysis"`
	KeywordTrends       map[string]map[string]int `json:"keywordTrends"`
	Summary             Summary                   `json:"summary"`

	// Message is set instead of data when the query matched nothing.
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Empty reports whether the analysis matched no papers.
func (r *Result) Empty() bool { return r.Summary.TotalPapers == 0 }

// Analyzer is the slice of the API client this package needs.
type Analyzer interface {
	Analyze(ctx context.Context, keyword string, startYear, endYear int, out any) error
}

// Service validates and runs analysis requests.
type Service struct {
	backend Analyzer
}

func NewService(backend Analyzer) *Service {
	return &Service{backend: backend}
}

// Run executes one analysis. Validation failures return before any
// network call.
func (s *Service) Run(ctx context.Context, keyword string, startYear, endYear int) (*Result, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, ErrEmptyKeyword
	}
	if startYear == 0 || endYear == 0 {
		return nil, ErrMissingYears
	}
	if startYear > endYear {
		return nil, ErrInvalidYears
	}

	var result Result
	if err := s.backend.Analyze(ctx, strings.TrimSpace(keyword), startYear, endYear, &result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, fmt.Errorf("analysis rejected: %s", result.Error)
	}
	return &result, nil
}

// FormatTable writes the analysis as a human-readable report to w.
func FormatTable(r *Result, w io.Writer) {
	if r.Empty() {
		msg := r.Message
		if msg == "" {
			msg = "No matching papers."
		}
		fmt.Fprintln(w, msg)
		return
	}

	fmt.Fprintf(w, "Papers: %d   Authors: %d   Journals: %d   Countries: %d\n",
		r.Summary.TotalPapers, r.Summary.UniqueAuthors,
		r.Summary.UniqueJournals, r.Summary.UniqueCountries)
	if len(r.Summary.YearRange) > 0 {
		fmt.Fprintf(w, "Years: %s\n", strings.Join(r.Summary.YearRange, ", "))
	}

	writeCounts(w, "Yearly trend", sortedByKey(r.YearlyTrend))
	writeCounts(w, "Top countries", sortedByCount(r.CountryDistribution))
	writeCounts(w, "Top journals", sortedByCount(r.JournalDistribution))
	writeCounts(w, "Top authors", sortedByCount(r.AuthorAnalysis.TopAuthors))
	writeCounts(w, "Top institutions", sortedByCount(r.AuthorAnalysis.TopInstitutions))
}

// FormatJSON writes the full analysis as indented JSON to w.
func FormatJSON(r *Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

type countRow struct {
	Label string
	Count int
}

func writeCounts(w io.Writer, heading string, rows []countRow) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n%s\n", heading, strings.Repeat("-", len(heading)))
	for _, row := range rows {
		label := row.Label
		if runes := []rune(label); len(runes) > 48 {
			label = string(runes[:45]) + "..."
		}
		fmt.Fprintf(w, "%-48s  %6d\n", label, row.Count)
	}
}

// sortedByKey orders rows by label ascending (years read top to bottom).
func sortedByKey(m map[string]int) []countRow {
	rows := toRows(m)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Label < rows[j].Label })
	return rows
}

// sortedByCount orders rows by count descending, label ascending on ties.
func sortedByCount(m map[string]int) []countRow {
	rows := toRows(m)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}

func toRows(m map[string]int) []countRow {
	rows := make([]countRow, 0, len(m))
	for label, count := range m {
		rows = append(rows, countRow{Label: label, Count: count})
	}
	return rows
}

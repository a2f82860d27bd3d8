// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

type fakeAnalyzer struct {
	response string
	err      error
	calls    int
	keyword  string
	start    int
	end      int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, keyword string, startYear, endYear int, out any) error {
	f.calls++
	f.keyword = keyword
	f.start = startYear
	f.end = endYear
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.response), out)
}

func TestRunValidation(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		start   int
		end     int
		want    error
	}{
		{"blank keyword", "   ", 1970, 1979, ErrEmptyKeyword},
		{"empty keyword", "", 1970, 1979, ErrEmptyKeyword},
		{"missing start", "laser", 0, 1979, ErrMissingYears},
		{"missing end", "laser", 1970, 0, ErrMissingYears},
		{"inverted range", "laser", 1979, 1970, ErrInvalidYears},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backend := &fakeAnalyzer{}
			svc := NewService(backend)
			_, err := svc.Run(context.Background(), tc.keyword, tc.start, tc.end)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Run() error = %v, want %v", err, tc.want)
			}
			if backend.calls != 0 {
				t.Fatalf("validation failure must not reach the network, got %d calls", backend.calls)
			}
		})
	}
}

func TestRunTrimsKeyword(t *testing.T) {
	backend := &fakeAnalyzer{response: `{"summary":{"totalPapers":3}}`}
	svc := NewService(backend)
	result, err := svc.Run(context.Background(), "  laser  ", 1970, 1979)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if backend.keyword != "laser" {
		t.Errorf("keyword sent = %q, want %q", backend.keyword, "laser")
	}
	if backend.start != 1970 || backend.end != 1979 {
		t.Errorf("years sent = %d..%d, want 1970..1979", backend.start, backend.end)
	}
	if result.Summary.TotalPapers != 3 {
		t.Errorf("TotalPapers = %d, want 3", result.Summary.TotalPapers)
	}
}

func TestRunServerRejection(t *testing.T) {
	backend := &fakeAnalyzer{response: `{"error":"keyword required"}`}
	svc := NewService(backend)
	_, err := svc.Run(context.Background(), "laser", 1970, 1979)
	if err == nil || !strings.Contains(err.Error(), "keyword required") {
		t.Fatalf("Run() error = %v, want rejection carrying server message", err)
	}
}

func TestRunDecodesFullResponse(t *testing.T) {
	backend := &fakeAnalyzer{response: `{
		"yearlyTrend": {"1970": 12, "1971": 30},
		"countryDistribution": {"United States": 20, "China": 15},
		"journalDistribution": {"PHYSICAL REVIEW B": 9},
		"authorAnalysis": {"topAuthors": {"SMITH, J": 4}, "topInstitutions": {"MIT": 6}},
		"keywordTrends": {"1970": {"laser": 12}},
		"summary": {"totalPapers": 42, "uniqueAuthors": 40, "uniqueJournals": 7,
			"uniqueCountries": 5, "yearRange": ["1970", "1971"]}
	}`}
	svc := NewService(backend)
	result, err := svc.Run(context.Background(), "laser", 1970, 1971)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.YearlyTrend["1971"] != 30 {
		t.Errorf("YearlyTrend[1971] = %d, want 30", result.YearlyTrend["1971"])
	}
	if result.AuthorAnalysis.TopInstitutions["MIT"] != 6 {
		t.Errorf("TopInstitutions[MIT] = %d, want 6", result.AuthorAnalysis.TopInstitutions["MIT"])
	}
	if result.Empty() {
		t.Error("Empty() = true for a populated result")
	}
}

func TestFormatTable(t *testing.T) {
	result := &Result{
		YearlyTrend:         map[string]int{"1971": 30, "1970": 12},
		CountryDistribution: map[string]int{"China": 15, "United States": 20},
		Summary: Summary{
			TotalPapers: 42, UniqueAuthors: 40, UniqueJournals: 7,
			UniqueCountries: 5, YearRange: []string{"1970", "1971"},
		},
	}
	var buf strings.Builder
	FormatTable(result, &buf)
	out := buf.String()

	if !strings.Contains(out, "Papers: 42") {
		t.Errorf("missing totals line:\n%s", out)
	}
	// Years ascending, countries by count descending.
	if strings.Index(out, "1970") > strings.Index(out, "1971") {
		t.Errorf("yearly trend not sorted by year:\n%s", out)
	}
	if strings.Index(out, "United States") > strings.Index(out, "China") {
		t.Errorf("countries not sorted by count:\n%s", out)
	}
}

func TestFormatTableTruncatesWideLabels(t *testing.T) {
	long := strings.Repeat("材料科学", 20) // 80 runes, 240 bytes
	result := &Result{
		JournalDistribution: map[string]int{long: 9},
		Summary:             Summary{TotalPapers: 9},
	}
	var buf strings.Builder
	FormatTable(result, &buf)
	out := buf.String()

	if !utf8.ValidString(out) {
		t.Fatalf("table output is not valid UTF-8:\n%s", out)
	}
	want := strings.Repeat("材料科学", 11) + "材..."
	if !strings.Contains(out, want) {
		t.Errorf("journal label not capped at 45 runes:\n%s", out)
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var buf strings.Builder
	FormatTable(&Result{Message: "no matching papers"}, &buf)
	if got := strings.TrimSpace(buf.String()); got != "no matching papers" {
		t.Errorf("FormatTable empty = %q", got)
	}
}

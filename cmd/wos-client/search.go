// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wos-client/internal/api"
	"github.com/pdiddy/wos-client/internal/filter"
	"github.com/pdiddy/wos-client/internal/session"
	"github.com/pdiddy/wos-client/internal/store"
	"github.com/pdiddy/wos-client/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [field=value ...]",
	Short: "Run an advanced search against the literature backend",
	Long: `Search sends a multi-clause boolean query to the backend and shows one
page of the bounded result set. Each argument is one clause, written as
field=value with an optional or: prefix to join it with OR instead of AND:

  wos-client search topic=graphene
  wos-client search topic=graphene or:title=transistor year=2020

Fields: topic, title, author, source, year, doi. With no arguments, the
last persisted search is restored and displayed without re-querying.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("start-year", 0, "restrict the search to years >= this")
	searchCmd.Flags().Int("end-year", 0, "restrict the search to years <= this")
	searchCmd.Flags().Int("page", 0, "jump to this result page after the search")
	searchCmd.Flags().Bool("json", false, "output the current page as JSON")
	searchCmd.Flags().String("query-file", "", "load clauses and year window from a saved YAML query file")
	searchCmd.Flags().String("save-query", "", "save the executed query to a YAML file")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := store.Open(sessionConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	client := api.New(backendConfig(), apiToken)
	sess := session.New(client, st)

	startYear, _ := cmd.Flags().GetInt("start-year")
	endYear, _ := cmd.Flags().GetInt("end-year")

	var filters *filter.Set
	if queryFile, _ := cmd.Flags().GetString("query-file"); queryFile != "" {
		if len(args) > 0 {
			return fmt.Errorf("give clauses either as arguments or via --query-file, not both")
		}
		qf, err := filter.ReadQueryFile(queryFile)
		if err != nil {
			return err
		}
		if filters, err = qf.ToSet(); err != nil {
			return err
		}
		if startYear == 0 {
			startYear = qf.StartYear
		}
		if endYear == 0 {
			endYear = qf.EndYear
		}
	} else if len(args) > 0 {
		var err error
		if filters, err = filter.FromTerms(args); err != nil {
			return err
		}
	}

	if filters == nil {
		restored, err := sess.Restore(ctx)
		if err != nil {
			return err
		}
		if !restored {
			return fmt.Errorf("no clauses given and no persisted search to restore")
		}
		fmt.Fprintln(os.Stderr, "Restored last search:", sess.Filters())
	} else {
		sess.SetFilters(filters)

		var err error
		if startYear != 0 || endYear != 0 {
			err = sess.ExecuteYearRange(ctx, startYear, endYear)
		} else {
			err = sess.Execute(ctx)
		}
		if err != nil {
			return describeSearchError(err)
		}

		if savePath, _ := cmd.Flags().GetString("save-query"); savePath != "" {
			if err := filter.WriteQueryFile(savePath, filters, startYear, endYear); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Saved query to", savePath)
		}
	}

	if page, _ := cmd.Flags().GetInt("page"); page > 0 {
		if err := sess.ChangePage(ctx, page); err != nil {
			return err
		}
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		items, err := sess.PageItems()
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	results, ok := sess.Results()
	if !ok {
		return session.ErrNoResults
	}
	printResultPage(results, sess.ShareLink())
	return nil
}

// printResultPage writes one page of results as a table plus a summary
// line distinguishing loaded items from the total match count.
func printResultPage(results types.ResultSet, link string) {
	items := results.Page(results.CurrentPage)
	if len(items) == 0 {
		fmt.Println("No results found.")
		return
	}

	offset := (results.CurrentPage - 1) * types.PageSize
	fmt.Printf("%-4s  %-24s  %-5s  %s\n", "#", "UID", "Year", "Title")
	fmt.Println(strings.Repeat("-", 100))
	for i, rec := range items {
		fmt.Printf("%-4d  %-24s  %-5s  %s\n", offset+i+1, rec.UID, rec.PubYear, truncate(rec.Title(), 62))
	}

	fmt.Printf("\nPage %d/%d — %d records loaded", results.CurrentPage, results.PageCount(), len(results.Items))
	if results.Truncated() {
		fmt.Printf(" of %d matches", results.TotalMatched)
	}
	fmt.Printf("  (%s)\n", link)
}

// truncate caps s at max runes. Byte slicing would split multi-byte
// titles mid-rune.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// describeSearchError keeps validation, connectivity, server, and
// timeout failures distinguishable for the user.
func describeSearchError(err error) error {
	var verr *filter.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("clause %d (%s) has no value; fill it in before searching", verr.ClauseID, verr.Field)
	}
	switch api.KindOf(err) {
	case api.KindTimeout:
		return fmt.Errorf("the backend did not answer in time; large year ranges can take a while: %w", err)
	case api.KindNetwork:
		return fmt.Errorf("cannot reach the backend; check --base-url: %w", err)
	case api.KindServer:
		return fmt.Errorf("the backend failed to run the search: %w", err)
	}
	return err
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wos-client/internal/api"
	"github.com/pdiddy/wos-client/internal/detail"
	"github.com/pdiddy/wos-client/internal/session"
	"github.com/pdiddy/wos-client/internal/store"
	"github.com/pdiddy/wos-client/pkg/types"
)

var detailCmd = &cobra.Command{
	Use:   "detail <uid>",
	Short: "Show one record by its identifier",
	Long: `Detail resolves a single record (e.g. WOS:000793512300004) through the
saved search results and the local record cache, falling back to the
backend's record endpoint. A fetched record is cached, so revisiting
the same identifier is free.`,
	Args: cobra.ExactArgs(1),
	RunE: runDetail,
}

func init() {
	detailCmd.Flags().Bool("json", false, "output the full record as JSON")

	rootCmd.AddCommand(detailCmd)
}

func runDetail(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := store.Open(sessionConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	client := api.New(backendConfig(), apiToken)
	resolver := detail.New(client, st)

	// A record already sitting in the saved search results needs no
	// round trip to the record endpoint.
	sess := session.New(client, st)
	if _, err := sess.Restore(ctx); err != nil {
		return err
	}

	var rec *types.PaperRecord
	if held, ok := sess.FindRecord(args[0]); ok {
		rec, err = resolver.Resolve(ctx, held)
	} else {
		rec, err = resolver.ResolveByID(ctx, args[0])
	}
	if err != nil {
		if api.IsNotFound(err) {
			return fmt.Errorf("no record with identifier %q", args[0])
		}
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	printRecord(rec)
	return nil
}

func printRecord(rec *types.PaperRecord) {
	rows := []struct{ label, value string }{
		{"UID", rec.UID},
		{"Title", rec.ArticleTitle},
		{"Authors", rec.Authors},
		{"Journal", rec.JournalTitle},
		{"Year", rec.PubYear},
		{"Volume", rec.Volume},
		{"Issue", rec.Issue},
		{"DOI", rec.DOI},
		{"ISSN", rec.ISSN},
		{"Publisher", rec.Publisher},
		{"Keywords", rec.Keyword},
		{"Abstract", rec.Abstract},
		{"Link", detail.ShareLink(rec.UID)},
	}
	for _, row := range rows {
		if row.value == "" {
			continue
		}
		fmt.Printf("%-10s %s\n", row.label+":", row.value)
	}
}

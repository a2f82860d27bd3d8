// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wos-client/internal/filter"
	"github.com/pdiddy/wos-client/internal/store"
	"github.com/pdiddy/wos-client/pkg/types"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show the persisted search session",
	Long: `Session shows what the local store holds: the last executed filters,
how many records were loaded, the current page, and when it was saved.`,
	RunE: runSessionShow,
}

var sessionExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the persisted session to a YAML file",
	Long: `Export writes the persisted filters and result records to a YAML file,
for inspection or for moving a session to another machine.`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionExport,
}

func init() {
	sessionCmd.AddCommand(sessionExportCmd)
	rootCmd.AddCommand(sessionCmd)
}

func loadSnapshot(cmd *cobra.Command) (store.Snapshot, error) {
	st, err := store.Open(sessionConfig())
	if err != nil {
		return store.Snapshot{}, err
	}
	defer st.Close()
	return st.LoadCurrent(cmd.Context())
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	snap, err := loadSnapshot(cmd)
	if errors.Is(err, store.ErrNoSession) {
		fmt.Println("No persisted session.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println("Filters: ", filter.FromClauses(snap.Filters))
	fmt.Printf("Loaded:   %d records", len(snap.Results.Items))
	if snap.Results.Truncated() {
		fmt.Printf(" of %d matches", snap.Results.TotalMatched)
	}
	fmt.Println()
	fmt.Printf("Page:     %d/%d  (%s)\n", snap.Results.CurrentPage, snap.Results.PageCount(), snap.Location)
	if !snap.SavedAt.IsZero() {
		fmt.Printf("Saved:    %s\n", snap.SavedAt.Local().Format(time.RFC1123))
	}
	return nil
}

// sessionDoc is the YAML shape written by `session export`.
type sessionDoc struct {
	SavedAt      time.Time            `yaml:"saved_at,omitempty"`
	Location     string               `yaml:"location,omitempty"`
	TotalMatched int                  `yaml:"total_matched,omitempty"`
	CurrentPage  int                  `yaml:"current_page"`
	Clauses      []filter.QueryClause `yaml:"clauses"`
	Items        []types.PaperRecord  `yaml:"items"`
}

func runSessionExport(cmd *cobra.Command, args []string) error {
	snap, err := loadSnapshot(cmd)
	if errors.Is(err, store.ErrNoSession) {
		return fmt.Errorf("nothing to export: run a search first")
	}
	if err != nil {
		return err
	}

	doc := sessionDoc{
		SavedAt:      snap.SavedAt,
		Location:     snap.Location,
		TotalMatched: snap.Results.TotalMatched,
		CurrentPage:  snap.Results.CurrentPage,
		Items:        snap.Results.Items,
	}
	for _, c := range snap.Filters {
		doc.Clauses = append(doc.Clauses, filter.QueryClause{
			Connector: string(c.Connector),
			Field:     c.Field.String(),
			Value:     c.Value,
		})
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Exported session (%d records) to %s\n", len(doc.Items), args[0])
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wos-client/internal/api"
	"github.com/pdiddy/wos-client/internal/export"
	"github.com/pdiddy/wos-client/internal/session"
	"github.com/pdiddy/wos-client/internal/store"
	"github.com/pdiddy/wos-client/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the last search to a CSV file",
	Long: `Export writes the records of the last persisted search to CSV. By
default only the loaded (bounded) record list is exported in a single
request. With --all, the server materializes every record matching the
search filters as an asynchronous job; wos-client polls its progress and
downloads the finished file. Ctrl-C cancels the job.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().Bool("all", false, "export all matching records via a server-side bulk job")
	exportCmd.Flags().String("output-dir", "", "directory for the exported file (default from config)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(sessionConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	client := api.New(backendConfig(), apiToken)
	sess := session.New(client, st)
	restored, err := sess.Restore(ctx)
	if err != nil {
		return err
	}
	if !restored {
		return fmt.Errorf("nothing to export: run a search first")
	}

	cfg := exportConfig()
	if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
		cfg.OutputDir = dir
	}
	controller := export.New(client, cfg)
	defer controller.Close()

	if all, _ := cmd.Flags().GetBool("all"); all {
		return runBulkExport(ctx, controller, sess)
	}

	results, ok := sess.Results()
	if !ok {
		return session.ErrNoResults
	}
	path, err := controller.ExportShown(ctx, results.Items)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d records to %s\n", len(results.Items), path)
	if results.Truncated() {
		fmt.Printf("The search matched %d records in total; use --all to export all of them.\n", results.TotalMatched)
	}
	return nil
}

// runBulkExport starts the server-side job, renders progress as it
// polls, and cancels the job when ctx is interrupted.
func runBulkExport(ctx context.Context, controller *export.Controller, sess *session.Session) error {
	controller.OnUpdate = func(j export.Job) {
		switch {
		case j.Status == types.StatusProcessing && j.Total > 0:
			fmt.Fprintf(os.Stderr, "\r%-14s %d/%d records", j.Status, j.Processed, j.Total)
		case j.Status.Terminal():
			fmt.Fprintf(os.Stderr, "\r%-40s\n", j.Status)
		default:
			fmt.Fprintf(os.Stderr, "\r%-40s", j.Status)
		}
	}

	// The job outlives this command's signal context: an interrupt
	// cancels the job explicitly rather than tearing the poller down
	// mid-update.
	taskID, err := controller.ExportAll(context.Background(), sess.Filters().Serialize())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Bulk export task %s accepted\n", taskID)

	go func() {
		<-ctx.Done()
		controller.Cancel(context.Background())
	}()

	final, err := controller.Wait(context.Background())
	if err != nil {
		return err
	}

	switch final.Status {
	case types.StatusCompleted:
		if final.Warning != "" {
			fmt.Fprintln(os.Stderr, "warning:", final.Warning)
		}
		fmt.Printf("Exported %d records to %s\n", final.Processed, final.SavedPath)
		return nil
	case types.StatusNoData:
		return fmt.Errorf("the search matched no records")
	case types.StatusCancelled:
		return fmt.Errorf("export cancelled")
	default:
		return fmt.Errorf("export failed: %s", final.Error)
	}
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/cachekey/internal/config"
	"github.com/harrison/cachekey/internal/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded fingerprints",
		Long: `List fingerprints recorded with 'cachekey fingerprint --record' (or with
history.enabled in the config file), most recent first.

Examples:
  cachekey history
  cachekey history --limit 5
  cachekey history --prune 720h`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of records to show (0 = all)")
	cmd.Flags().Duration("prune", 0, "Delete records older than this duration before listing")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	out := cmd.OutOrStdout()
	limit, _ := cmd.Flags().GetInt("limit")
	prune, _ := cmd.Flags().GetDuration("prune")

	dbPath, err := config.GetHistoryDBPath(env.cfg, env.workDir)
	if err != nil {
		return err
	}
	if dbPath != ":memory:" {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			fmt.Fprintln(out, "No fingerprints recorded")
			return nil
		}
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if prune > 0 {
		removed, err := store.Prune(ctx, time.Now().Add(-prune))
		if err != nil {
			return err
		}
		env.log.LogInfo(fmt.Sprintf("pruned %d records older than %s", removed, prune))
	}

	records, err := store.List(ctx, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No fingerprints recorded")
		return nil
	}

	printHistory(out, records)
	return nil
}

// printHistory formats and prints history records
func printHistory(w io.Writer, records []*history.Record) {
	cyan := color.New(color.FgCyan, color.Bold)
	gray := color.New(color.FgHiBlack)

	for _, rec := range records {
		cyan.Fprintf(w, "%s", shortID(rec.Hash))
		fmt.Fprintf(w, "  %s  ", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		gray.Fprintf(w, "%d files, %s", rec.FileCount, rec.Algorithm)
		fmt.Fprintf(w, "\n  spec: %s\n  dir:  %s\n", rec.Spec, rec.WorkingDirectory)
	}
}

func shortID(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/cachekey/internal/config"
	"github.com/harrison/cachekey/internal/fingerprint"
	"github.com/harrison/cachekey/internal/history"
	"github.com/harrison/cachekey/internal/manifest"
)

// NewFingerprintCommand creates the fingerprint command
func NewFingerprintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint <key-spec>",
		Short: "Compute the cache key of a key spec",
		Long: `Compute the cache key of a key spec and print its key and hash.

Segments are separated by "|". Quoted segments are literals; segments
containing a path separator, "*", "!", "," or "." are comma-separated lists
of include globs and "!"-prefixed exclude globs.

Examples:
  cachekey fingerprint 'npm | "linux" | **/package-lock.json'
  cachekey fingerprint 'go | go.sum, **/*.go, !**/testdata/**' --hash xxhash
  cachekey fingerprint 'deps | go.sum' --record --output .cachekey/go.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runFingerprint,
	}

	cmd.Flags().String("hash", "", "File digest algorithm: sha256, xxhash (default from config)")
	cmd.Flags().Int("max-concurrency", 0, "Files digested in parallel (0 = number of CPUs)")
	cmd.Flags().Bool("record", false, "Record the fingerprint in the history database")
	cmd.Flags().String("output", "", "Write a YAML manifest of the fingerprint to this path")

	return cmd
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	algorithm, err := fingerprint.ParseAlgorithm(env.cfg.HashAlgorithm)
	if err != nil {
		return err
	}

	creator, err := fingerprint.NewCreator(fingerprint.Options{
		WorkingDirectory: env.workDir,
		Algorithm:        algorithm,
		MaxConcurrency:   env.cfg.MaxConcurrency,
		Scan:             env.scanOptions(),
		Cache:            env.cache,
		Logger:           env.log,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	fp, err := creator.Create(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, fingerprint.ErrNoMatchingFiles) {
			env.log.LogError(err.Error())
		}
		return err
	}
	env.log.LogFingerprint(fp, time.Since(start))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "key:  %s\n", fp.Key)
	fmt.Fprintf(out, "hash: %s\n", fp.Hash)

	if outputPath, _ := cmd.Flags().GetString("output"); outputPath != "" {
		if err := writeManifest(env, out, config.ResolvePath(env.workDir, outputPath), fp); err != nil {
			return err
		}
	}

	if env.cfg.History.Enabled {
		if err := recordHistory(cmd, env, out, fp); err != nil {
			return err
		}
	}

	return nil
}

// writeManifest stores fp at path, logging which files changed since the
// manifest previously stored there.
func writeManifest(env *environment, out io.Writer, path string, fp *fingerprint.Fingerprint) error {
	next := manifest.New(fp, time.Now())

	if _, err := os.Stat(path); err == nil {
		prev, err := manifest.Read(path)
		if err != nil {
			env.log.LogWarn(fmt.Sprintf("ignoring unreadable manifest %s: %v", path, err))
		} else {
			for _, change := range manifest.Diff(prev, next) {
				env.log.LogInfo(fmt.Sprintf("%s: %s", change.Kind, change.Rel))
			}
		}
	}

	if err := manifest.Write(path, next); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	fmt.Fprintf(out, "manifest: %s\n", path)
	return nil
}

// recordHistory stores fp and reports whether it differs from the previous
// fingerprint recorded for the same spec and working directory.
func recordHistory(cmd *cobra.Command, env *environment, out io.Writer, fp *fingerprint.Fingerprint) error {
	dbPath, err := config.GetHistoryDBPath(env.cfg, env.workDir)
	if err != nil {
		return err
	}
	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	prev, err := store.Latest(ctx, fp.Spec, fp.WorkingDirectory)
	if err != nil && !errors.Is(err, history.ErrNotFound) {
		return err
	}

	rec, err := store.Record(ctx, fp)
	if err != nil {
		return err
	}
	env.log.LogDebug(fmt.Sprintf("recorded fingerprint %s in %s", rec.ID, store.Path()))

	switch {
	case prev == nil:
		fmt.Fprintln(out, "status: new")
	case prev.Hash == fp.Hash:
		color.New(color.FgGreen).Fprintf(out, "status: unchanged since %s\n", prev.CreatedAt.Local().Format(time.RFC3339))
	default:
		color.New(color.FgYellow).Fprintf(out, "status: changed (previous %s)\n", prev.Hash)
	}
	return nil
}

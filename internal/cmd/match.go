package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/cachekey/internal/glob"
)

// NewMatchCommand creates the match command
func NewMatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <include> [path...]",
		Short: "Print the paths selected by an include glob and its excludes",
		Long: `Test paths against an include glob and exclude globs without touching
the filesystem. Paths are read from the arguments, or one per line from
standard input when none are given. Relative paths resolve against the
working directory. Selected paths are printed as given.

Examples:
  cachekey match '*.tmp' good.tmp bad.tmp --exclude bad.tmp
  git ls-files | cachekey match '**/*.go' --exclude '**/testdata/**'`,
		Args: cobra.MinimumNArgs(1),
		RunE: runMatch,
	}

	cmd.Flags().StringArrayP("exclude", "e", nil, "Exclude glob (repeatable)")
	cmd.Flags().Bool("invert", false, "Print the paths that are not selected instead")

	return cmd
}

func runMatch(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	excludes, _ := cmd.Flags().GetStringArray("exclude")
	invert, _ := cmd.Flags().GetBool("invert")

	keep, err := env.cache.BuildFilter(env.workDir, args[0], excludes)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	check := func(path string) {
		abs, err := glob.Normalize(env.workDir, path)
		if err != nil {
			env.log.LogWarn(fmt.Sprintf("skipping %q: %v", path, err))
			return
		}
		if keep(abs) != invert {
			fmt.Fprintln(out, path)
		}
	}

	if len(args) > 1 {
		for _, path := range args[1:] {
			check(path)
		}
		return nil
	}
	return eachLine(cmd.InOrStdin(), check)
}

// eachLine calls fn for every non-blank line of r.
func eachLine(r io.Reader, fn func(line string)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fn(line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read paths: %w", err)
	}
	return nil
}

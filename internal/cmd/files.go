package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/cachekey/internal/fileutil"
)

// NewFilesCommand creates the files command
func NewFilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files <include>",
		Short: "List the files an include glob selects on disk",
		Long: `Plan the include glob, walk the planned directories and print every file
matched by the include glob and none of the exclude globs, sorted.

Examples:
  cachekey files '**/*.go' --exclude '**/vendor/**'
  cachekey files 'configs/*.yaml' --relative`,
		Args: cobra.ExactArgs(1),
		RunE: runFiles,
	}

	cmd.Flags().StringArrayP("exclude", "e", nil, "Exclude glob (repeatable)")
	cmd.Flags().Bool("relative", false, "Print paths relative to the working directory")

	return cmd
}

func runFiles(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	excludes, _ := cmd.Flags().GetStringArray("exclude")
	relative, _ := cmd.Flags().GetBool("relative")

	f, err := env.cache.NewFilter(env.workDir, args[0], excludes)
	if err != nil {
		return err
	}
	plan, err := f.Plan()
	if err != nil {
		return err
	}
	env.log.LogPlan(args[0], plan)
	for _, exclude := range f.Excludes() {
		env.log.LogDebug(fmt.Sprintf("excluding %s", exclude))
	}

	result, err := fileutil.ScanPlan(cmd.Context(), plan, f.Match, env.scanOptions().ForInclude(f.Include()))
	if err != nil {
		return err
	}
	for _, scanErr := range result.Errors {
		env.log.LogWarn(scanErr.Error())
	}
	env.log.LogDebug(fmt.Sprintf("visited %d directories, selected %d files", result.DirsVisited, len(result.Files)))

	out := cmd.OutOrStdout()
	for _, path := range result.Files {
		if relative {
			if rel, err := filepath.Rel(env.workDir, path); err == nil {
				path = rel
			}
		}
		fmt.Fprintln(out, path)
	}
	return nil
}

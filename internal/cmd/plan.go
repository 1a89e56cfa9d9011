package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPlanCommand creates the plan command
func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <glob>",
		Short: "Show the directory walk an include glob needs",
		Long: `Resolve an include glob against the working directory and print its
enumeration plan: the root directory, the file pattern to search for, and
whether the walk descends into every subdirectory.

Examples:
  cachekey plan 'src/**/*.go'
  cachekey plan /etc/hosts`,
		Args: cobra.ExactArgs(1),
		RunE: runPlan,
	}
	return cmd
}

func runPlan(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	g, err := env.cache.CompileIn(env.workDir, args[0])
	if err != nil {
		return err
	}
	plan, err := g.Plan()
	if err != nil {
		return err
	}
	env.log.LogPlan(args[0], plan)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "glob:    %s\n", g)
	fmt.Fprintf(out, "root:    %s\n", plan.Root)
	fmt.Fprintf(out, "pattern: %s\n", plan.Pattern)
	fmt.Fprintf(out, "depth:   %s\n", plan.Depth)
	if plan.Levels > 0 {
		fmt.Fprintf(out, "levels:  %d\n", plan.Levels)
	}
	return nil
}

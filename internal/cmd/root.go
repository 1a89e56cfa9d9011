package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for cachekey
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cachekey",
		Short: "Content-addressed cache keys from glob file sets",
		Long: `cachekey computes deterministic cache keys from key specs such as

  npm | "linux" | **/package-lock.json, !**/node_modules/**

Literal segments are used as written. File segments are globs: each include
glob is planned into the smallest directory walk that can satisfy it, the
walked files are filtered by the include and exclude globs, and the
selected files' paths and contents are digested into the key.

Configuration is loaded from <workdir>/.cachekey/config.yaml if present.
CLI flags override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("workdir", "", "Working directory relative globs resolve against (default: current directory)")
	cmd.PersistentFlags().String("config", "", "Path to config file (default: <workdir>/.cachekey/config.yaml)")
	cmd.PersistentFlags().String("log-level", "info", "Log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().String("log-dir", "", "Directory for run log files")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Shorthand for --log-level debug")

	cmd.AddCommand(NewFingerprintCommand())
	cmd.AddCommand(NewPlanCommand())
	cmd.AddCommand(NewMatchCommand())
	cmd.AddCommand(NewFilesCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}

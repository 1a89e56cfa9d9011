package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/cachekey/internal/config"
	"github.com/harrison/cachekey/internal/fileutil"
	"github.com/harrison/cachekey/internal/glob"
	"github.com/harrison/cachekey/internal/logger"
)

// environment is the state shared by every subcommand: the resolved working
// directory, merged configuration, loggers and pattern cache.
type environment struct {
	workDir string
	cfg     *config.Config
	log     logger.Logger
	fileLog *logger.FileLogger
	cache   *glob.Cache
}

// loadEnvironment resolves --workdir, loads configuration (--config or
// <workdir>/.cachekey/config.yaml), merges the logging flags and opens the
// loggers. Callers must call close.
func loadEnvironment(cmd *cobra.Command) (*environment, error) {
	workDirFlag, _ := cmd.Flags().GetString("workdir")
	if workDirFlag == "" {
		workDirFlag = "."
	}
	workDir, err := filepath.Abs(workDirFlag)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	info, err := os.Stat(workDir)
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("working directory is not a directory: %s", workDir)
	}

	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(workDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	var logLevelPtr *string
	if cmd.Flags().Changed("log-level") {
		logLevel, _ := cmd.Flags().GetString("log-level")
		logLevelPtr = &logLevel
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose && logLevelPtr == nil {
		debug := "debug"
		logLevelPtr = &debug
	}

	var logDirPtr *string
	if cmd.Flags().Changed("log-dir") {
		logDir, _ := cmd.Flags().GetString("log-dir")
		logDirPtr = &logDir
	}

	var hashPtr *string
	if cmd.Flags().Lookup("hash") != nil && cmd.Flags().Changed("hash") {
		hash, _ := cmd.Flags().GetString("hash")
		hashPtr = &hash
	}

	var concurrencyPtr *int
	if cmd.Flags().Lookup("max-concurrency") != nil && cmd.Flags().Changed("max-concurrency") {
		concurrency, _ := cmd.Flags().GetInt("max-concurrency")
		concurrencyPtr = &concurrency
	}

	var recordPtr *bool
	if cmd.Flags().Lookup("record") != nil && cmd.Flags().Changed("record") {
		record, _ := cmd.Flags().GetBool("record")
		recordPtr = &record
	}

	cfg.MergeWithFlags(logLevelPtr, logDirPtr, hashPtr, concurrencyPtr, recordPtr)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cache, err := glob.NewCache(cfg.PatternCacheSize)
	if err != nil {
		return nil, err
	}

	env := &environment{
		workDir: workDir,
		cfg:     cfg,
		cache:   cache,
	}

	console := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if cfg.LogDir != "" {
		fileLog, err := logger.NewFileLoggerWithDirAndLevel(config.ResolvePath(workDir, cfg.LogDir), cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		env.fileLog = fileLog
		env.log = logger.Multi(console, fileLog)
		env.log.LogDebug(fmt.Sprintf("run log: %s", fileLog.RunFile()))
	} else {
		env.log = console
	}

	return env, nil
}

// scanOptions returns the walker options from configuration.
func (e *environment) scanOptions() fileutil.ScanOptions {
	return fileutil.ScanOptions{
		ExcludeDirs: e.cfg.Scan.ExcludeDirs,
		SkipHidden:  e.cfg.Scan.SkipHidden,
	}
}

func (e *environment) close() {
	if e.fileLog != nil {
		e.fileLog.Close()
	}
}

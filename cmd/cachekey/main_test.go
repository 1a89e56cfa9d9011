package main

import (
	"testing"

	"github.com/harrison/cachekey/internal/cmd"
)

func TestRootCommandBuilds(t *testing.T) {
	root := cmd.NewRootCommand()
	if root.Version == "" {
		t.Error("root command should carry a version")
	}
}

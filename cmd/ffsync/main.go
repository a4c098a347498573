package main

import (
	"fmt"
	"os"

	"github.com/wuhui20091515/FreeFileSync/internal/cli"
	"github.com/wuhui20091515/FreeFileSync/pkg/logger"
)

// Version information, set at build time via ldflags
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cli.SetVersionInfo(version, buildDate)

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

package main

import (
	"log/slog"
	"os"

	"github.com/odyssey-erp/odyssey-group/cmd/odyssey/cli"
	"github.com/odyssey-erp/odyssey-group/internal/app"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

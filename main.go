// main is the entry point for the revstamp CLI.
package main

import (
	"github.com/huangsam/revstamp/cmd"
	"github.com/huangsam/revstamp/internal/contract"
	"github.com/huangsam/revstamp/internal/history"
)

func main() {
	if err := run(); err != nil {
		contract.LogFatal("revstamp failed", err)
	}
}

// run executes the CLI and releases global resources before main exits.
func run() error {
	defer history.CloseHistory()
	defer cmd.SyncLogger()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			contract.LogWarn("Cannot stop profiling", err)
		}
	}()
	return cmd.Execute()
}

// Command studio replays editing scenarios against the canvas history
// engine, inspects snapshots and prints the keymap.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/studio/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil && !cli.IsReported(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}

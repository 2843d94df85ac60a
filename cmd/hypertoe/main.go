// Command hypertoe plays n-dimensional tic-tac-toe in the terminal, alone,
// against the computer, or with other players through a websocket relay.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/hypertoe/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}

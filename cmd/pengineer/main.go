// Command pengineer manages prompt/completion training data in a local store.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/pengineer/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}

// Command revaudit checks revision audit tables against their content tables.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/revaudit/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}

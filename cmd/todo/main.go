package main

import (
	"fmt"
	"os"

	"todosync/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(cli.GetExitCode(err))
	}
}

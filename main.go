package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/kubev2v/offload-agent/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
		os.Exit(1)
	}
}

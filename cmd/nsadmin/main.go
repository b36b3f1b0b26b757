package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/numberskills/nsadmin/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed).Sprint("Error:"), err)
		os.Exit(1)
	}
}

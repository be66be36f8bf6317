package main

import (
	"fmt"
	"os"

	"github.com/inovacc/rael/cmd"
	"github.com/inovacc/rael/internal/apperr"
)

func main() {
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(apperr.ExitCode(err))
	}
}

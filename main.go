package main

import (
	"fmt"
	"os"

	"github.com/chemtools/qcflow/cmd"
	qcerrors "github.com/chemtools/qcflow/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, qcerrors.FormatForCLI(err))
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/cp25sy5-modjot/ocr-wrapper-service/cmd/server/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

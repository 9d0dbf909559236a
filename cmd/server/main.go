package main

import (
	"fmt"
	"os"

	"github.com/inkwell/internal/cli"
)

// @title        Inkwell API
// @version      1.0
// @description  Blog content and reader engagement API.
// @BasePath     /
func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "inkwell: %v\n", err)
		os.Exit(1)
	}
}

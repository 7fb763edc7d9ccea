// Command pdf2ai opens PDFs in a terminal viewer and summarizes them through
// the pdf2ai backend, which it can also serve.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

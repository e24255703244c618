// Command embedctl runs the comment embed pipeline from the command line.
//
// Usage:
//
//	embedctl sanitize [file]
//	embedctl transform [file] --reveal-title "Show"
//	embedctl compose [file] --comment-id c1 --author ann
//
// The comment body is read from file, or from stdin when file is omitted or "-".
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// file: main.go
// version: 2.0.0
// guid: 03402892-2e9a-4768-af8e-6799f8b184bd

package main

import (
	"fmt"
	"os"

	"github.com/jdfalk/readora/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"os"

	"datarepublican/charitygraph/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

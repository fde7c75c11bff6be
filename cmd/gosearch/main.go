// gosearch indexes JSON documents into bbolt-backed segments and runs
// term, prefix, wildcard and fuzzy queries against them.
package main

import (
	"os"

	"AutomatonSearch/cmd/gosearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

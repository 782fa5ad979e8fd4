// pkgscout locates symbols inside installed Go packages by fuzzy name and
// diagnoses broken imports in code snippets.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// Command csvapi serves uploaded tabular files as a queryable HTTP API and
// manages the local dataset store.
package main

import (
	"os"

	"github.com/spf13/afero"
)

func main() {
	if err := newApp(afero.NewOsFs()).rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

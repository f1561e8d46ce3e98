// Command checkenv exits non-zero when a required server variable is unset.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"ballot/internal/platform/config"
)

func check(w io.Writer, lookup func(string) (string, bool)) int {
	missing := config.MissingVars(config.RequiredVars, lookup)
	if len(missing) > 0 {
		fmt.Fprintf(w, "missing required environment variables: %s\n", strings.Join(missing, ", "))
		return 1
	}
	fmt.Fprintln(w, "environment ok")
	return 0
}

func main() {
	os.Exit(check(os.Stderr, os.LookupEnv))
}

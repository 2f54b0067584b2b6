// Command xsmodels evaluates XSPEC models and manages the model library's
// settings from the command line or over HTTP.
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

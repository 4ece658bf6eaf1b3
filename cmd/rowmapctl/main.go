// Command rowmapctl renders DDL, generates property constants and runs a
// demo of the rowmap session and statement builder.
package main

import (
	"os"

	"github.com/syssam/rowmap/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

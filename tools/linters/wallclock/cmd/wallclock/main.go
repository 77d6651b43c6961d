package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/cyclesync/cyclesync/tools/linters/wallclock"
)

func main() {
	singlechecker.Main(wallclock.Analyzer)
}

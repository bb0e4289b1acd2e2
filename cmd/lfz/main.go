package main

import (
	"os"

	"github.com/buckleypaul/lfz/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

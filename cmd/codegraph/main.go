package main

import (
	"github.com/codegraphhq/codegraph/internal/cli"
)

func main() {
	cli.Execute()
}

package main

import (
	"github.com/mchmarny/dropout/pkg/cli"
)

func main() {
	cli.Execute()
}

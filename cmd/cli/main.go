package main

import (
	"github.com/rafianfasaa/stunting/pkg/cli"
)

func main() {
	cli.Execute()
}

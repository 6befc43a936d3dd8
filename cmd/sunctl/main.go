package main

import (
	"sunward.gg/internal/cli"
)

func main() {
	cli.Execute()
}

package main

import "github.com/mcoot/idlecoins/internal/cli"

func main() {
	cli.Execute()
}

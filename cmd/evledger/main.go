package main

import "github.com/mcoot/eventledger/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/ledgerbridge/faktura/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/mcoot/connections-go/internal/cli"

func main() {
	cli.Execute()
}

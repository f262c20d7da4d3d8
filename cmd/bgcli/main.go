package main

import "github.com/mcoot/backgammon/internal/cli"

func main() {
	cli.Execute()
}

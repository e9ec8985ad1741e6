package main

import "cmdref/internal/cli"

func main() {
	cli.Execute()
}

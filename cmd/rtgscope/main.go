package main

import "github.com/emiliopalmerini/rtgscope/internal/cli"

func main() {
	cli.Execute()
}

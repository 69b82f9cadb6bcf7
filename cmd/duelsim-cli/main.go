package main

import "github.com/duelsim/duelsim/cmd/duelsim-cli/cmd"

func main() {
	cmd.Execute()
}

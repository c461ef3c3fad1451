package main

import "github.com/hyperpart/cmd/cli/cmd"

func main() {
	cmd.Execute()
}

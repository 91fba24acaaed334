package main

import "github.com/terralag/terralag/cmd/terralag/commands"

func main() {
	commands.Execute()
}

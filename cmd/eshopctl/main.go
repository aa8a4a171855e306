package main

import "github.com/Skotchmaster/eshop/cmd/eshopctl/commands"

func main() {
	commands.Execute()
}

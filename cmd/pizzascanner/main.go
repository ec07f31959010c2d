package main

import "PizzaScanner/cmd/pizzascanner/cmd"

func main() {
	cmd.Execute()
}

// Command bingo is a command line client for the People Bingo API.
package main

import "github.com/mcoot/peoplebingo/internal/cli"

func main() {
	cli.Execute()
}

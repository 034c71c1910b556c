package main

import "ynab-exchange/cmd"

func main() {
	cmd.Execute()
}

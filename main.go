package main

import "github.com/chartloom/chartloom/cmd"

func main() {
	cmd.Execute()
}

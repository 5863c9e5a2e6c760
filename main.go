package main

import "github.com/shellpipe/shellpipe/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/flacheck/flacheck/cmd"

func main() {
	cmd.Execute()
}

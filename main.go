package main

import "github.com/courseflow/courseflow/cmd"

func main() {
	cmd.Execute()
}

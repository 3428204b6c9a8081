package main

import "github.com/cppla/wellcheck/cmd"

func main() {
	cmd.Execute()
}

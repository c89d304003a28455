package main

import "github.com/coparently/coparently/cmd"

func main() {
	cmd.Execute()
}

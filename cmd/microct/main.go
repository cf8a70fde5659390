package main

import "microct/cmd/microct/cmd"

func main() {
	cmd.Execute()
}

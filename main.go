package main

import "github.com/halfstep/midi2cv/cmd"

func main() {
	cmd.Execute()
}

package main

import "webbuild/src/cmd"

func main() {
	cmd.Execute()
}

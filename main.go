package main

import "tale-server/cmd"

func main() {
	cmd.Execute()
}

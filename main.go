package main

import "github.com/KaramelBytes/vgmarket-cli/cmd"

func main() {
	cmd.Execute()
}

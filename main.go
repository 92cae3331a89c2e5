package main

import "github.com/KaramelBytes/atmscope/cmd"

func main() {
	cmd.Execute()
}

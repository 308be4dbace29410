package main

import "github.com/KaramelBytes/agentops-cli/cmd"

func main() {
	cmd.Execute()
}

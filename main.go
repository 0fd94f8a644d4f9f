package main

import "github.com/KaramelBytes/fraudlens-cli/cmd"

func main() {
	cmd.Execute()
}

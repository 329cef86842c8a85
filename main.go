package main

import "github.com/longkey1/llmdesk/cmd"

func main() {
	cmd.Execute()
}

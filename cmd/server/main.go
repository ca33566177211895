package main

import "github.com/hackpoint/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}

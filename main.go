package main

import "github.com/pitwall-dev/pitwall/cmd"

func main() {
	cmd.Execute()
}

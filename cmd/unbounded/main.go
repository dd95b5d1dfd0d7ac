package main

import "github.com/tryfix/unbounded/cmd/unbounded/cmd"

func main() {
	cmd.Execute()
}

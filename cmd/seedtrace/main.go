package main

import "github.com/MeKo-Tech/seedtrace/cmd/seedtrace/cmd"

func main() {
	cmd.Execute()
}

package main

import (
	"feedgraph/internal/cmd"
)

func main() {
	cmd.Run()
}

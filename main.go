package main

import (
	"HomeStatus/cmd"
)

func main() {
	cmd.Execute()
}

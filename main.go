package main

import (
	"github.com/PabloCSScobar/musicxml-parser/cmd"
)

func main() {
	cmd.Execute()
}

package main

import (
	"github.com/ssargent/avrolog/cmd/avrolog/cmd"
)

func main() {
	cmd.Execute()
}

// The main package for the drawsync executable.
package main

import (
	"github.com/bingokit/drawsync/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}

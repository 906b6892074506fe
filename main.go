// Entrypoint for the Cobra CLI; command implementations live in cmd/root.go.

package main

import (
	"github.com/typedrat/phosphor/cmd"
)

func main() {
	cmd.Execute()
}

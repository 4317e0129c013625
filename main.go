// The main package for the painelbot executable.
package main

import (
	"github.com/mdpainel/painel-automation/cmd"
)

func main() {
	cmd.Execute()
}

package main

import (
	"github.com/kerbaras/recipes/cmd/recipes"
)

func main() {
	cmd.Execute()
}

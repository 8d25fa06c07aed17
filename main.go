package main

import (
	"os"

	"github.com/roddenjw/plotline/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/niktheblak/temperature-assistant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

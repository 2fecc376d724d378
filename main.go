package main

import (
	"os"

	"github.com/obrienhr/cv-triage/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

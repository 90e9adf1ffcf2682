// Package main is the entry point for the profilescrape CLI.
package main

import (
	"errors"
	"os"

	"github.com/smithp17/AutoDialer/cmd/profilescrape/commands"
	"github.com/smithp17/AutoDialer/internal/config"
)

func main() {
	if err := commands.Execute(); err != nil {
		if errors.Is(err, config.ErrConfiguration) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

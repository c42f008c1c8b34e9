package main

import (
	"os"

	"github.com/baharkarakas/ledger-bot/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

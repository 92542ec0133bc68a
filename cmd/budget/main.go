// Command budget is the command line for the budget ledger.
package main

import (
	"fmt"
	"os"

	"budgetapp/internal/cli"
	"budgetapp/internal/config"
	"budgetapp/internal/logger"
	"budgetapp/internal/validator"
)

func main() {
	logger.Init(os.Getenv("ENV"))

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	validator.Register()

	code := cli.Execute(cli.Options{Config: cfg}, os.Args[1:])
	logger.Sync()
	os.Exit(code)
}

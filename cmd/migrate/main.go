package main

import (
	"os"

	"budgetapp/internal/cli"
	"budgetapp/internal/config"
	"budgetapp/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	cmd := cli.NewMigrateCommand(cfg)
	cmd.Use = "migrate"
	cmd.SilenceUsage = true
	cmd.SetArgs(os.Args[1:])
	return cmd.Execute()
}

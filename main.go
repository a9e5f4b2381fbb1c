package main

import (
	"os"

	"shorts-autopost/infrastructure/configuration"
	"shorts-autopost/infrastructure/logger"
	"shorts-autopost/interfaces/cli"
)

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
		os.Exit(2)
	}
}

func main() {
	defer recoverPanic()

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	if err := cli.Execute(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Command failed")
		os.Exit(1)
	}
}

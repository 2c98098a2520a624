package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// @title Rapid Response Hub API
// @version 1.0
// @description Incident reporting, community verification and SOS alerts.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app := &cli.App{
		Name:  "rapid-response-hub",
		Usage: "Incident verification and SOS alert server",
		Commands: []*cli.Command{
			serveCommand,
			migrateCommand,
			createAdminCommand,
		},
		// Без подкоманды запускается сервер
		DefaultCommand: serveCommand.Name,
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shenikar/rapid_response_hub/internal/auth"
	"github.com/shenikar/rapid_response_hub/internal/config"
	"github.com/shenikar/rapid_response_hub/internal/notifier"
	"github.com/shenikar/rapid_response_hub/internal/repository"
	"github.com/shenikar/rapid_response_hub/internal/service"
	"github.com/shenikar/rapid_response_hub/pkg/logger"
	"github.com/shenikar/rapid_response_hub/pkg/postgres"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const adminCommandTimeout = 30 * time.Second

// create-admin создает администратора или повышает существующего пользователя
var createAdminCommand = &cli.Command{
	Name:  "create-admin",
	Usage: "Create an admin account or promote an existing user",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Admin display name", Value: "Admin"},
		&cli.StringFlag{Name: "email", Usage: "Admin email", Required: true},
		&cli.StringFlag{Name: "password", Usage: "Admin password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
	},
	Action: createAdmin,
}

func createAdmin(c *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(c.Context, adminCommandTimeout)
	defer cancel()

	dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer dbpool.Close()

	dispatcher, err := notifier.NewDispatcher(cfg, log)
	if err != nil {
		return err
	}

	authService := service.NewAuthService(
		repository.NewUserRepository(dbpool),
		auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		dispatcher,
		log,
	)

	user, err := authService.CreateAdmin(ctx, c.String("name"), c.String("email"), c.String("password"))
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("Admin account is ready")
	return nil
}

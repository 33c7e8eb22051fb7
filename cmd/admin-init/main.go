// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/carterperez-dev/templates/user-api/internal/config"
	"github.com/carterperez-dev/templates/user-api/internal/core"
	"github.com/carterperez-dev/templates/user-api/internal/user"
)

type options struct {
	configPath string
	req        user.CreateUserRequest
}

func main() {
	opts := parseFlags()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(opts, logger); err != nil {
		logger.Error("admin init failed", "error", err)
		os.Exit(1)
	}
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "", "path to config file")
	flag.StringVar(&o.req.FirstName, "first-name", "Admin", "admin first name")
	flag.StringVar(&o.req.LastName, "last-name", "User", "admin last name")
	flag.StringVar(&o.req.Email, "email", os.Getenv("ADMIN_EMAIL"), "admin email")
	flag.StringVar(&o.req.Phone, "phone", os.Getenv("ADMIN_PHONE"), "admin phone")
	flag.StringVar(&o.req.Password, "password", os.Getenv("ADMIN_PASSWORD"),
		"admin password (prefer ADMIN_PASSWORD)")
	flag.Parse()
	return o
}

func run(opts options, logger *slog.Logger) error {
	if err := user.NewValidator().Struct(opts.req); err != nil {
		return fmt.Errorf("invalid admin details: %s", core.FormatValidationError(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}

	svc := user.NewService(user.NewRepository(db.DB), nil)

	admin, err := svc.CreateAdmin(ctx, opts.req)
	if err != nil {
		if errors.Is(err, user.ErrEmailExists) {
			logger.Info("admin already exists", "email", opts.req.Email)
			return nil
		}
		return err
	}

	logger.Info("admin created", "id", admin.ID, "email", admin.Email)
	return nil
}

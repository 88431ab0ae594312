package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/noah-isme/innouni-api/internal/repository"
	"github.com/noah-isme/innouni-api/pkg/config"
	"github.com/noah-isme/innouni-api/pkg/database"
	"github.com/noah-isme/innouni-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(context.Background(), cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	cli := commandLine{
		db:     db.DB,
		users:  repository.NewUserRepository(db),
		logger: logr,
		out:    os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logr.Error("admin command failed", zap.Error(err))
		}
		db.Close()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/bjax13/CookbookClub/internal/application"
	"github.com/bjax13/CookbookClub/internal/cli"
	"github.com/bjax13/CookbookClub/internal/config"
	"github.com/bjax13/CookbookClub/internal/logging"
)

const version = "0.1.0"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err.Error())
		return 1
	}
	logger := logging.New(logging.Options{Level: cfg.CLILogLevel, Format: cfg.LogFormat, Writer: stderr})
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("failed to load .env file", "error", envErr)
	}

	return cli.Run(ctx, args, stdout, stderr, cli.Options{
		Storage:           cfg.Storage,
		DataPath:          cfg.DataPath,
		SQLiteBusyTimeout: cfg.SQLiteBusyTimeout,
		Version:           version,
		Files:             application.OSFileChecker{},
		Logger:            logger.With(slog.String("component", "cli")),
	})
}

package main

import (
	"log/slog"
	"os"

	"github.com/lite-lake/infra-certops/internal/infrastructure/logger"
	"github.com/lite-lake/infra-certops/internal/interfaces/cli"
)

func main() {
	logLevel := slog.LevelInfo
	if os.Getenv("CERTOPS_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}

	logFormat := os.Getenv("CERTOPS_LOG_FORMAT")

	logger.Init(&logger.Config{
		Level:     logLevel,
		Format:    logFormat,
		AddSource: os.Getenv("CERTOPS_DEBUG") != "",
	})

	cli.Execute()
}

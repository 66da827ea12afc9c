package main

import (
	"flag"

	"go.uber.org/zap"

	"FinTrack/internal/repository"
	"FinTrack/pkg/logger"
)

func main() {
	out := flag.String("out", repository.DefaultQueryPath, "output directory for generated queries")
	flag.Parse()

	logger.Init()
	defer logger.Sync()

	if err := repository.Generate(*out); err != nil {
		logger.Logger.Fatal("Query generation failed", zap.Error(err))
	}
	logger.Logger.Info("Query generation finished", zap.String("out", *out))
}

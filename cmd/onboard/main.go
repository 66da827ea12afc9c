package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	appconfig "FinTrack/config"
	"FinTrack/internal/onboarding"
	"FinTrack/internal/service"
	"FinTrack/pkg/apiclient"
	"FinTrack/pkg/logger"
)

func main() {
	cfg := appconfig.Cfg

	baseURL := flag.String("api", cfg.APIBaseURL, "API base URL")
	userID := flag.String("user", "", "user id")
	accessToken := flag.String("token", os.Getenv("FINTRACK_ACCESS_TOKEN"), "access token")
	refreshToken := flag.String("refresh", os.Getenv("FINTRACK_REFRESH_TOKEN"), "refresh token, used when access token is empty")
	startPath := flag.String("path", "/", "path the client opens first")
	flag.Parse()

	logger.Init()
	defer logger.Sync()

	if *userID == "" {
		logger.Logger.Fatal("Missing -user flag")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := apiclient.New(*baseURL, apiclient.WithAccessToken(*accessToken))
	if err != nil {
		logger.Logger.Fatal("Failed to create API client", zap.Error(err))
	}
	if *accessToken == "" && *refreshToken != "" {
		if _, err := client.RefreshToken(ctx, *refreshToken); err != nil {
			logger.Logger.Fatal("Failed to refresh access token", zap.Error(err))
		}
	}

	var opts []onboarding.Option
	if cfg.OnboardingStrictOrder {
		opts = append(opts, onboarding.WithStrictOrder())
	}
	routes := service.RoutesFromConfig(cfg)
	if err := routes.Validate(); err != nil {
		logger.Logger.Fatal("Invalid onboarding routes", zap.Error(err))
	}

	w := newWizard(client, routes, *userID, os.Stdin, os.Stdout)
	session := onboarding.NewSession(
		*userID,
		onboarding.NewRetryingSource(client, service.RetryPolicyFromConfig(cfg)),
		onboarding.NewNavigationEffect(onboarding.NewSequencer(routes, opts...), w),
	)
	defer session.Close()

	if err := w.Run(ctx, session, *startPath); err != nil {
		logger.Logger.Error("Onboarding aborted", zap.Error(err))
		os.Exit(1)
	}
}

package main

import (
	"go.uber.org/zap"

	config "github.com/NordCoder/Marketus/internal/config/api-gateway"
	"github.com/NordCoder/Marketus/internal/obs"
)

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return obs.NewLogger(*cfg.Log.AsLoggerConfig(cfg.App))
}

package main

import (
	"context"

	config "github.com/NordCoder/Marketus/internal/config/api-gateway"
	pg "github.com/NordCoder/Marketus/internal/repository/postgres"
)

func initDB(ctx context.Context, cfg *config.Config) (*pg.DB, error) {
	return pg.New(ctx, cfg.DB)
}

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	config "github.com/NordCoder/Marketus/internal/config/api-gateway"
	"github.com/NordCoder/Marketus/internal/httpx"
	"github.com/NordCoder/Marketus/internal/obs"
	kafkarepo "github.com/NordCoder/Marketus/internal/repository/kafka"
	pg "github.com/NordCoder/Marketus/internal/repository/postgres"
	"github.com/NordCoder/Marketus/internal/services/api-gateway/auth"
	"github.com/NordCoder/Marketus/internal/services/api-gateway/proxy"
)

func buildHTTPServer(cfg *config.Config, logger *zap.Logger, db *pg.DB) (*http.Server, []func() error) {
	var closers []func() error

	var events auth.EventPublisher = auth.NopPublisher{}
	if cfg.Kafka.Enable {
		prod := kafkarepo.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic).WithLogger(logger)
		closers = append(closers, prod.Close)
		events = auth.NewKafkaPublisher(prod, logger)
	}

	tokens := auth.NewTokenService([]byte(cfg.Auth.JWTSecret), cfg.Auth.AccessTTL)
	uc := auth.NewUsecase(
		pg.NewUserRepo(db),
		pg.NewRefreshSessionRepo(db),
		tokens,
		auth.NewHasher(0),
		events,
		logger,
		auth.Config{AccessTTL: cfg.Auth.AccessTTL, RefreshTTL: cfg.Auth.RefreshTTL},
	)
	authCtrl := auth.NewController(uc, logger, auth.CookieOpts{
		Domain: cfg.Auth.CookieDomain,
		Secure: cfg.Auth.CookieSecure,
	})

	fwd := proxy.NewForwarder(
		proxy.NewHTTPClient(cfg.Proxy.Timeout),
		proxy.Registry(cfg.Proxy.Services),
		logger,
	)
	proxyCtrl := proxy.NewController(fwd, tokens, logger)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(httpx.RequestID)
	r.Use(httpx.CORS(cfg.Server.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", authCtrl.Routes)
		proxyCtrl.Routes(r)
	})

	handler := otelhttp.NewHandler(r, "api-gateway")

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}, closers
}

func bootstrapMetrics(cfg *config.Config, logger *zap.Logger, db *pg.DB) *http.Server {
	return obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, func(ctx context.Context) error {
		return db.Pool.Ping(ctx)
	}, logger)
}

func serveHTTP(srv *http.Server, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("http listening", zap.String("addr", cfg.Server.HTTPAddr))
	return srv.ListenAndServe()
}

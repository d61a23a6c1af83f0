package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"payconnect/internal/config"
	"payconnect/internal/core/janitor"
	httpx "payconnect/internal/http"
	"payconnect/internal/logging"
	"payconnect/internal/provider/base"
	"payconnect/internal/provider/connectors"
	merchantsvc "payconnect/internal/services/merchant"
	paymentsvc "payconnect/internal/services/payment"
	"payconnect/internal/store/postgres"
	redisstore "payconnect/internal/store/redis"
	"payconnect/internal/telemetry"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.App.LogLevel, cfg.App.IsDevelopment())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.SetupProvider(ctx, telemetry.Config{
		ServiceName: "payconnect",
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Environment: cfg.App.Env,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("tracing setup failed")
	}

	// Init DB
	pool := postgres.MustOpen(ctx, cfg.DB.DSN)
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	// Access tokens live in Redis
	rdb, err := redisstore.Open(ctx, cfg.Redis.Addr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable")
	}
	defer rdb.Close()

	registry, signer, err := connectors.Build(connectors.Options{
		NordeaBaseURL:        cfg.Connectors.NordeaBaseURL,
		MoneiBaseURL:         cfg.Connectors.MoneiBaseURL,
		GenericNordeaHeaders: cfg.Connectors.NordeaSignatureScheme == config.SchemeGeneric,
		KeyCacheTTL:          cfg.Sec.KeyCacheTTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connector setup failed")
	}
	if cfg.Sec.KeyCacheTTL > 0 {
		go janitor.NewWorker("signing-keys", signer, cfg.Sec.KeyCacheTTL).Run(ctx)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	transport := base.NewHTTPClient(cfg.HTTP.Timeout,
		base.WithRetries(cfg.HTTP.MaxRetries),
		base.WithMetrics(base.NewMetrics(promReg)),
	)

	accounts := postgres.NewAccountRepository(pool)
	merchantService := merchantsvc.NewService(postgres.NewMerchantRepository(pool), accounts, registry, cfg.Sec.AESKey)
	paymentService := paymentsvc.NewService(registry, transport, accounts, redisstore.NewTokenStore(rdb), cfg.Sec.AESKey)

	r := httpx.NewRouter(httpx.RouterDependencies{
		Config:          cfg,
		MerchantService: merchantService,
		PaymentService:  paymentService,
		Gatherer:        promReg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      otelhttp.NewHandler(r, "payconnect"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("env", cfg.App.Env).Msgf("PayConnect API listening on :%s", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	cancel()
	ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if err := shutdownTracing(ctx2); err != nil {
		log.Warn().Err(err).Msg("tracer shutdown failed")
	}
	log.Info().Msg("server stopped")
}

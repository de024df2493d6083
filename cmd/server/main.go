package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orcamento/internal/config"
	"orcamento/internal/infra"
	"orcamento/internal/repository"
	"orcamento/internal/router"
	"orcamento/internal/service"
	"orcamento/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// SMTP relay guarded by a circuit breaker so a downed relay fails fast
	// instead of stalling the PDF workers.
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())

	// Worker pool and cron are wired here (composition root) so they share
	// the same infrastructure the HTTP layer uses.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	produtoRepo := repository.NewProdutoRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	historicoRepo := repository.NewHistoricoCustoRepository(db)

	custoSvc := service.NewCustoService(produtoRepo, historicoRepo, rdb,
		time.Duration(cfg.CustoCacheTTLMin)*time.Minute)
	orcamentoSvc := service.NewOrcamentoService(pedidoRepo, custoSvc, dispatcher, mailer, smtpCB, cfg.PDFStoragePath)
	clienteSvc := service.NewClienteService(clienteRepo,
		time.Duration(cfg.PrazoCancelamentoDias)*24*time.Hour)

	workerHandlers := &worker.WorkerHandlers{
		Recalculo:    worker.NewRecalculoWorker(custoSvc),
		OrcamentoPDF: worker.NewOrcamentoPDFWorker(orcamentoSvc),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)
	worker.StartCancelamentoCron(ctx, clienteSvc, time.Hour)

	r := router.New(cfg, db, rdb, smtpCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("orcamento backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/mercadotech/internal/config"
	"github.com/Skotchmaster/mercadotech/internal/events"
	"github.com/Skotchmaster/mercadotech/internal/httpserver"
	"github.com/Skotchmaster/mercadotech/internal/logging"
	"github.com/Skotchmaster/mercadotech/internal/storage"
	"github.com/Skotchmaster/mercadotech/pkg/apiclient"
)

func main() {
	ctx := context.Background()

	cfg, notice, err := config.Load(ctx)
	if err != nil {
		l := logging.FromContext(ctx)
		l.Fatal().Err(err).Msg("load config")
	}

	log := logging.New(logging.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty}).
		With().Str("service", cfg.ServiceName).Logger()
	if notice != "" {
		log.Info().Msg(notice)
	}

	kv, err := storage.Open(ctx, cfg.StorageURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open storage")
	}

	app := wire(apiclient.NewClient(cfg.APIURL, apiclient.WithTimeout(cfg.HTTPTimeout)), kv, log)

	publisher := events.New(cfg.Brokers())
	if len(cfg.Brokers()) == 0 {
		log.Info().Msg("KAFKA_BROKERS not set, activity events disabled")
	}
	emitter := events.NewEmitter(publisher, log)

	e := httpserver.New(&httpserver.Deps{
		Sessions: app.sessions,
		Cart:     app.cart,
		API:      app.client,
		Events:   emitter,
		Log:      log,
	})

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Str("api", cfg.APIURL).Msg("storefront listening")
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	app.restore(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	app.cart.Wait()
	emitter.Wait()

	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("kafka close error")
	}
	if err := kv.Close(); err != nil {
		log.Error().Err(err).Msg("storage close error")
	}

	log.Info().Msg("shutdown complete")
}

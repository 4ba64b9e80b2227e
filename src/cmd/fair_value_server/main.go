package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/spx-fair-value/src/cmd/spx_fair_value/run"
	"github.com/jiaming2012/spx-fair-value/src/eventservices"
	"github.com/jiaming2012/spx-fair-value/src/logger"
	"github.com/jiaming2012/spx-fair-value/src/router"
	"github.com/jiaming2012/spx-fair-value/src/telemetry"
)

func main() {
	logger.Setup()

	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}

	env, err := run.LoadEnv(goEnv)
	if err != nil {
		log.Fatalf("failed to load environment: %v", err)
	}

	// Set up OpenTelemetry.
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		otelShutdown, err := telemetry.SetupOTelSDK(context.Background(), "fair_value_server")
		if err != nil {
			log.Fatalf("failed to setup otel sdk: %v", err)
		}

		// Handle shutdown properly so nothing leaks.
		defer func() {
			if err := otelShutdown(context.Background()); err != nil {
				log.Errorf("failed to shutdown otel sdk: %v", err)
			}
		}()
	}

	configPath := os.Getenv("PARITY_CONFIG_PATH")
	if configPath == "" {
		configPath = run.DefaultConfigPath(env.ProjectsDir)
	}

	config, err := eventservices.LoadParityConfigYAML(configPath)
	if err != nil {
		log.Fatalf("failed to load parity config: %v", err)
	}

	client := eventservices.NewTradierClient(env.BearerToken, env.OptionChainURL, env.OptionExpirationsURL, env.StockQuotesURL)
	store, closeStore, err := run.OpenSessionStore(env)
	if err != nil {
		log.Fatalf("failed to open session store: %v", err)
	}

	defer closeStore()
	service := eventservices.NewFairValueService(client, store, config)
	if env.MarketCalendarURL != "" {
		service.Clock = eventservices.NewMarketCalendarCache(env.MarketCalendarURL, env.BearerToken)
	}

	// setup router
	r := mux.NewRouter()
	port := os.Getenv("PORT")
	if len(port) == 0 {
		port = "3000"
	}

	router.SetupHandler(r, service, store)

	srv := &http.Server{
		Handler:      otelhttp.NewHandler(r, "fair_value_server"),
		Addr:         fmt.Sprintf(":%s", port),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Infof("listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: failed to listen and serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("http: failed to shutdown: %v", err)
	}
}

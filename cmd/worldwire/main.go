package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/worldwire/clients/openai_client"
	"github.com/mcdev12/worldwire/internal/autopilot"
	"github.com/mcdev12/worldwire/internal/events"
	"github.com/mcdev12/worldwire/internal/gateway"
	"github.com/mcdev12/worldwire/internal/narrative"
	"github.com/mcdev12/worldwire/internal/session"
	"github.com/mcdev12/worldwire/internal/worlddata"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	settings, err := loadSettings(getEnv("CONFIG_PATH", "worldwire.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load settings")
	}

	// Country baseline, from dataset file or curated fallback
	worldData := worlddata.NewService(getEnv("WORLD_DATASET_PATH", "data/countries.json"))
	worldDataHandler := worlddata.NewHandler(worldData)

	// Narrative generator with spend ledger; disabled without an API key
	generator, budget, ledger := setupNarrative(settings)
	if ledger != nil {
		defer ledger.Close()
	}

	// Gateway: WebSocket fan-out, optionally fed from JetStream
	gatewayConfig := gateway.DefaultConfig()
	gatewayConfig.JetStreamConfig.URL = getEnv("NATS_URL", "nats://localhost:4222")
	gatewayConfig.ConsumeJetStream = getEnvAsBool("CONSUME_JETSTREAM", false)

	gatewayService, err := gateway.NewService(gatewayConfig, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gateway service")
	}

	// Event publishers: always the in-process gateway, plus JetStream when
	// other instances need the stream
	publishers := events.MultiPublisher{gatewayService.Publisher()}
	if getEnvAsBool("PUBLISH_JETSTREAM", false) {
		jsConfig := events.DefaultJetStreamConfig()
		jsConfig.URL = getEnv("NATS_URL", "nats://localhost:4222")
		jsPublisher, err := events.NewJetStreamPublisher(jsConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create JetStream publisher")
		}
		defer jsPublisher.Close()
		publishers = append(publishers, jsPublisher)
	}

	// Session store
	registry := session.NewRegistry(settings.Session.Capacity)
	app := session.NewApp(registry, worldData, generator, publishers, settings.narrativeTimeout())
	gatewayService.SetStateProvider(app)

	sessionHandler := NewSessionHandler(app, gatewayService, budget)
	server := setupServer(sessionHandler, gatewayService, worldData, worldDataHandler, budget != nil)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go app.Run(ctx)

	go func() {
		if err := gatewayService.Start(ctx); err != nil {
			log.Error().Err(err).Msg("gateway service failed")
		}
	}()

	// Autopilot keeps observer sessions moving
	pilot := autopilot.New(app, registry, clockwork.NewRealClock(), autopilot.Config{
		Interval:   settings.autopilotInterval(),
		NumWorkers: settings.Autopilot.Workers,
	})
	go func() {
		if err := pilot.Run(ctx); err != nil {
			log.Error().Err(err).Msg("autopilot failed")
		}
	}()

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	cancel()

	// Give services time to clean up
	time.Sleep(1 * time.Second)

	log.Info().Msg("worldwire shutdown complete")
}

// setupNarrative wires the headline generator. Without an OpenAI key the
// marked-synthetic fallback serves every request and no ledger is opened.
func setupNarrative(settings Settings) (narrative.Generator, *narrative.Budget, *narrative.Store) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set, using synthetic headlines")
		return narrative.NewFallbackGenerator(), nil, nil
	}

	ledger, err := narrative.NewStore(settings.Narrative.LedgerPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to open narrative ledger, using synthetic headlines")
		return narrative.NewFallbackGenerator(), nil, nil
	}

	budget := narrative.NewBudget(ledger, settings.Narrative.DailyBudgetUSD, settings.Narrative.MonthlyBudgetUSD)

	client := openai_client.NewOpenAIClient(apiKey)
	if settings.Narrative.Model != "" {
		client.SetModel(settings.Narrative.Model)
	}

	generator := narrative.NewOpenAIGenerator(client, budget, ledger, settings.narrativeTimeout())
	return generator, budget, ledger
}

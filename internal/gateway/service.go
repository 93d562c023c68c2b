package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/worldwire/internal/events"
)

// Service is the realtime gateway: WebSocket connections plus event
// fan-out. Events arrive either in-process (the connection manager is a
// publisher the session app writes to) or over JetStream when the consumer
// is enabled.
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	eventConsumer     *EventConsumer
	stateHandler      *StateHandler
}

// Config holds configuration for the gateway service
type Config struct {
	ConnectionConfig ConnectionConfig
	JetStreamConfig  JetStreamConsumerConfig

	// ConsumeJetStream enables the cross-instance relay. Single-instance
	// deployments leave it off and rely on in-process publishing.
	ConsumeJetStream bool
}

// DefaultConfig returns default configuration for the gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		JetStreamConfig:  DefaultJetStreamConsumerConfig(),
		ConsumeJetStream: false,
	}
}

// NewService creates a new gateway service
func NewService(config Config, stateProvider StateProvider) (*Service, error) {
	connectionManager := NewConnectionManager(config.ConnectionConfig)
	wsHandler := NewWebSocketHandler(connectionManager)
	stateHandler := NewStateHandler(stateProvider)

	var eventConsumer *EventConsumer
	if config.ConsumeJetStream {
		var err error
		eventConsumer, err = NewEventConsumer(connectionManager, config.JetStreamConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create event consumer: %w", err)
		}
	}

	return &Service{
		connectionManager: connectionManager,
		wsHandler:         wsHandler,
		eventConsumer:     eventConsumer,
		stateHandler:      stateHandler,
	}, nil
}

// SetStateProvider installs the session snapshot source once the session
// store exists.
func (s *Service) SetStateProvider(provider StateProvider) {
	s.stateHandler.SetProvider(provider)
}

// Publisher returns the in-process publisher the session app writes to.
func (s *Service) Publisher() events.Publisher {
	return s.connectionManager
}

// Start begins the gateway service and blocks until ctx is cancelled
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting gateway service")

	go s.connectionManager.Start(ctx)

	if s.eventConsumer != nil {
		go func() {
			if err := s.eventConsumer.Start(ctx); err != nil {
				log.Error().Err(err).Msg("event consumer failed")
			}
		}()
	}

	<-ctx.Done()

	log.Info().Msg("gateway service shutting down")
	return s.Stop()
}

// Stop gracefully shuts down the gateway service
func (s *Service) Stop() error {
	if s.eventConsumer != nil {
		if err := s.eventConsumer.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop event consumer")
		}
	}

	log.Info().Msg("gateway service stopped")
	return nil
}

// RegisterRoutes registers the WebSocket and state HTTP routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	log.Info().Msg("gateway routes registered")
}

// HandleSessionState delegates to the state handler. The REST layer owns
// the /api/sessions/ mux entry and routes the /state suffix here.
func (s *Service) HandleSessionState(w http.ResponseWriter, r *http.Request) {
	s.stateHandler.HandleGetSessionState(w, r)
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() map[string]interface{} {
	stats := s.connectionManager.GetConnectionStats()
	stats["service"] = "session_gateway"
	stats["status"] = "running"
	return stats
}

// BroadcastEvent allows manual event broadcasting (useful for testing)
func (s *Service) BroadcastEvent(sessionID uuid.UUID, envelope events.Envelope) {
	s.connectionManager.BroadcastToSession(sessionID, envelope)
}

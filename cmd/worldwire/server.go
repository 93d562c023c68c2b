package main

import (
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/worldwire/internal/gateway"
	"github.com/mcdev12/worldwire/internal/worlddata"
)

func setupServer(handler *SessionHandler, gatewayService *gateway.Service, worldData *worlddata.Service, worldDataHandler *worlddata.Handler, narrativeEnabled bool) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	// Register REST, WebSocket, and dataset routes
	handler.RegisterRoutes(mux)
	gatewayService.RegisterRoutes(mux)
	worldDataHandler.RegisterRoutes(mux)

	setupHealthCheck(mux, worldData, narrativeEnabled)
	setupInfo(mux, gatewayService)

	wrapped := c.Handler(mux)

	// Setup HTTP/2 server
	return &http.Server{
		Addr:    fmt.Sprintf(":%s", getEnv("PORT", "8080")),
		Handler: h2c.NewHandler(wrapped, &http2.Server{}),
	}
}

func setupHealthCheck(mux *http.ServeMux, worldData *worlddata.Service, narrativeEnabled bool) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, err := fmt.Fprintf(w, `{"status":"ok","world_data_countries":%d,"narrative_enabled":%t}`,
			len(worldData.AllCountries()), narrativeEnabled)
		if err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}

func setupInfo(mux *http.ServeMux, gatewayService *gateway.Service) {
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		stats := gatewayService.GetStats()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"service":"worldwire","version":"1.0.0","connections":%d}`,
			stats["total_connections"])
	})
}

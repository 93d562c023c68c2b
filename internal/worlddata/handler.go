package worlddata

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// Handler serves the country baseline over HTTP for client startup fetches.
type Handler struct {
	service *Service
}

// NewHandler creates a new baseline handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleCountries handles GET /worlddata/countries.
func (h *Handler) HandleCountries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeNoCache(w)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.service.AllCountries()); err != nil {
		log.Error().Err(err).Msg("failed to encode country baseline")
	}
}

// HandleCountry handles GET /worlddata/countries/{id}.
func (h *Handler) HandleCountry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/worlddata/countries/")
	if id == "" {
		http.Error(w, "country id is required", http.StatusBadRequest)
		return
	}

	country, ok := h.service.Country(strings.ToUpper(id))
	if !ok {
		http.Error(w, "Country not found", http.StatusNotFound)
		return
	}

	writeNoCache(w)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(country); err != nil {
		log.Error().Err(err).Str("country_id", id).Msg("failed to encode country")
	}
}

// RegisterRoutes registers baseline routes with an HTTP mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/worlddata/countries", h.HandleCountries)
	mux.HandleFunc("/worlddata/countries/", h.HandleCountry)
}

// writeNoCache sets cache-busting headers so clients always see the current
// dataset version.
func writeNoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}

package replica

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mcdev12/worldwire/internal/models"
)

func datasetHandler(status int, features []models.Country) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		json.NewEncoder(w).Encode(features)
	}
}

func TestLoaderUsesPrimary(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/primary.json", datasetHandler(http.StatusOK, testFeatures()))
	server := httptest.NewServer(mux)
	defer server.Close()

	store := NewStore()
	loader := NewLoader(server.URL, "/primary.json", "/fallback.json")

	if err := loader.Initialize(context.Background(), store); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 3 {
		t.Fatalf("expected 3 features, got %d", store.Len())
	}
}

func TestLoaderFallsBackOnPrimaryFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/primary.json", datasetHandler(http.StatusInternalServerError, nil))
	mux.HandleFunc("/fallback.json", datasetHandler(http.StatusOK, testFeatures()[:2]))
	server := httptest.NewServer(mux)
	defer server.Close()

	store := NewStore()
	loader := NewLoader(server.URL, "/primary.json", "/fallback.json")

	if err := loader.Initialize(context.Background(), store); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 features from fallback, got %d", store.Len())
	}
}

func TestLoaderErrorsWhenBothTiersFail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/primary.json", datasetHandler(http.StatusNotFound, nil))
	mux.HandleFunc("/fallback.json", datasetHandler(http.StatusServiceUnavailable, nil))
	server := httptest.NewServer(mux)
	defer server.Close()

	store := NewStore()
	store.Load(testFeatures())
	loader := NewLoader(server.URL, "/primary.json", "/fallback.json")

	if err := loader.Initialize(context.Background(), store); err == nil {
		t.Fatal("expected an error when both tiers fail")
	}
	// A failed refresh keeps the previous collection.
	if store.Len() != 3 {
		t.Fatalf("failed load should not clear the store, len %d", store.Len())
	}
}

func TestLoaderCacheBusting(t *testing.T) {
	var sawVersion bool
	mux := http.NewServeMux()
	mux.HandleFunc("/primary.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "" {
			sawVersion = true
		}
		json.NewEncoder(w).Encode(testFeatures())
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	loader := NewLoader(server.URL, "/primary.json", "/fallback.json")
	if err := loader.Initialize(context.Background(), NewStore()); err != nil {
		t.Fatal(err)
	}
	if !sawVersion {
		t.Fatal("request missing cache-busting version parameter")
	}
}

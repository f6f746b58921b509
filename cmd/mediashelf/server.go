package main

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"mediashelf/internal/app/catalog"
	"mediashelf/internal/app/engagement"
	"mediashelf/internal/app/lists"
	"mediashelf/internal/app/rankings"
	"mediashelf/internal/auth"
	"mediashelf/internal/httpapi"
	"mediashelf/internal/provider"
	"mediashelf/internal/store"
	"mediashelf/shared/go/middleware"
)

func newHTTPHandler(cfg Config, dataStore *store.Store) http.Handler {
	catalogSvc := catalog.New(dataStore, newProviderClients(cfg), log.Logger)
	engagementSvc := engagement.New(dataStore)
	listSvc := lists.New(dataStore)
	rankingSvc := rankings.New(dataStore)
	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)

	routes := httpapi.New(catalogSvc, engagementSvc, listSvc, rankingSvc, verifier).Routes()

	handler := withCORS(cfg.AllowedOrigins, routes)
	handler = middleware.Recovery()(handler)
	handler = middleware.RequestLogging()(handler)
	return handler
}

func newProviderClients(cfg Config) []provider.Client {
	clients := []provider.Client{
		provider.NewGoogleBooksClient(cfg.GoogleBooksAPIKey),
		provider.NewJikanClient(),
	}

	// RAWG rejects keyless requests, so the games catalog stays offline
	// without a key.
	if cfg.RAWGAPIKey != "" {
		clients = append(clients, provider.NewRAWGClient(cfg.RAWGAPIKey))
	} else {
		log.Warn().Msg("RAWG_API_KEY not set, games provider disabled")
	}

	return clients
}

func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	originAllowed := func(origin string) bool {
		if len(allowedOrigins) == 0 || origin == "" {
			return false
		}
		for _, o := range allowedOrigins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

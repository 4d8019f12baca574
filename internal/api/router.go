// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/bookshelf/internal/auth"
	"github.com/tomtom215/bookshelf/internal/middleware"
)

// compressionLevel is the gzip level for API responses.
const compressionLevel = 5

// Router assembles handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	auth          *auth.Middleware
}

// NewRouter creates a Router. A nil jwtManager leaves the admin routes
// unmounted.
func NewRouter(handler *Handler, chiMw *ChiMiddleware, jwtManager *auth.JWTManager) *Router {
	router := &Router{
		handler:       handler,
		chiMiddleware: chiMw,
	}
	if jwtManager != nil {
		router.auth = auth.NewMiddleware(jwtManager, WriteError)
	}
	return router
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	// Health probes are exempt from rate limiting
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chimiddleware.Compress(compressionLevel, "application/json"))

		r.Route("/recommendations", func(r chi.Router) {
			r.Post("/", router.handler.Recommend)
			r.Get("/by-title", router.handler.RecommendByTitle)
		})

		r.Route("/catalog/books", func(r chi.Router) {
			r.Get("/", router.handler.ListBooks)
			r.Get("/{isbn}", router.handler.GetBook)
		})

		r.Get("/snapshot", router.handler.SnapshotStatus)

		if router.auth != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Use(router.auth.RequireRole(auth.RoleAdmin))
				r.Post("/rebuild", router.handler.Rebuild)
			})
		}
	})

	return r
}

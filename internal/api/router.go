// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/voodoo-quality/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. The middleware budget comes from the
// handler's security config.
func NewRouter(handler *Handler) *Router {
	var mwConfig *ChiMiddlewareConfig
	if handler.config != nil {
		mwConfig = ChiMiddlewareConfigFrom(&handler.config.Security)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// Setup builds the HTTP handler for every route.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	// Hijacked connections skip the instrumented group.
	r.Get("/ws", router.handler.WebSocket)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(APISecurityHeaders())

		r.With(router.chiMiddleware.RateLimitHealth()).Get("/health", router.handler.Health)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())

			r.Route("/data-quality", func(r chi.Router) {
				r.Get("/", router.handler.DataQuality)
				r.Post("/refresh", router.handler.RefreshDataQuality)
				r.Put("/timeframe", router.handler.SetTimeframe)
			})

			r.Route("/houses", func(r chi.Router) {
				r.With(middleware.Compression).Get("/export", router.handler.ExportHouses)
				r.With(router.chiMiddleware.RateLimitImport()).Post("/import", router.handler.ImportHouses)
			})
		})
	})

	return r
}

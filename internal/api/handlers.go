// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/voodoo-quality/internal/config"
	"github.com/tomtom215/voodoo-quality/internal/dashboard"
	"github.com/tomtom215/voodoo-quality/internal/transfer"
	ws "github.com/tomtom215/voodoo-quality/internal/websocket"
)

// BreakerState reports the catalog circuit breaker state.
type BreakerState interface {
	State() string
}

// CacheInfo exposes stats cache occupancy for health checks.
type CacheInfo interface {
	Len() int
	HitRate() float64
}

// Deps are the collaborators the handlers serve.
type Deps struct {
	Config    *config.Config
	Dashboard *dashboard.Dashboard
	Exporter  *transfer.Exporter
	Importer  *transfer.Importer
	Hub       *ws.Hub
	Breaker   BreakerState
	Cache     CacheInfo
	Version   string
}

// Handler holds the HTTP handlers of the console API.
type Handler struct {
	config    *config.Config
	dashboard *dashboard.Dashboard
	exporter  *transfer.Exporter
	importer  *transfer.Importer
	wsHub     *ws.Hub
	breaker   BreakerState
	cache     CacheInfo
	version   string
	startTime time.Time
}

// NewHandler creates a Handler. Config, Breaker, Cache and Hub may be nil.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		config:    deps.Config,
		dashboard: deps.Dashboard,
		exporter:  deps.Exporter,
		importer:  deps.Importer,
		wsHub:     deps.Hub,
		breaker:   deps.Breaker,
		cache:     deps.Cache,
		version:   deps.Version,
		startTime: time.Now(),
	}
}

// sanitizeLogValue escapes control characters in user input before logging.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

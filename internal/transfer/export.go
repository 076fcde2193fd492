// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/voodoo-quality/internal/housecsv"
	"github.com/tomtom215/voodoo-quality/internal/logging"
	"github.com/tomtom215/voodoo-quality/internal/metrics"
	"github.com/tomtom215/voodoo-quality/internal/models"
)

// HouseLister returns every house in the catalog.
type HouseLister interface {
	FetchHouses(ctx context.Context) ([]models.HouseRecord, error)
}

// Export is an encoded house table ready to be saved or served.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// Exporter downloads the house table and encodes it as CSV.
type Exporter struct {
	houses HouseLister
}

// NewExporter creates an Exporter.
func NewExporter(houses HouseLister) *Exporter {
	return &Exporter{houses: houses}
}

// Export fetches the full house list in one request and encodes it in memory.
// Fetch errors are returned unchanged apart from wrapping; an empty catalog
// yields ErrNoHouses.
func (e *Exporter) Export(ctx context.Context) (*Export, error) {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	log := logging.Ctx(ctx)
	start := time.Now()

	houses, err := e.houses.FetchHouses(ctx)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("failure").Inc()
		log.Error().Err(err).Msg("House export failed")
		return nil, fmt.Errorf("fetch houses: %w", err)
	}
	if len(houses) == 0 {
		metrics.ExportsTotal.WithLabelValues("empty").Inc()
		log.Warn().Msg("House export found no houses")
		return nil, ErrNoHouses
	}

	data := housecsv.EncodeBytes(houses)
	metrics.ExportsTotal.WithLabelValues("success").Inc()
	metrics.ExportRows.Add(float64(len(houses)))
	log.Info().
		Int("rows", len(houses)).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("Houses exported")

	return &Export{
		Filename:    housecsv.Filename,
		ContentType: housecsv.DownloadContentType,
		Data:        data,
		Rows:        len(houses),
	}, nil
}

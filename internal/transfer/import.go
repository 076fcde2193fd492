// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/voodoo-quality/internal/catalog"
	"github.com/tomtom215/voodoo-quality/internal/dashboard"
	"github.com/tomtom215/voodoo-quality/internal/housecsv"
	"github.com/tomtom215/voodoo-quality/internal/logging"
	"github.com/tomtom215/voodoo-quality/internal/metrics"
	"github.com/tomtom215/voodoo-quality/internal/models"
)

// Uploader sends raw CSV to the catalog's bulk update endpoint.
type Uploader interface {
	UpdateHouseInfo(ctx context.Context, csv []byte, csrfToken string) (*models.ImportResponse, error)
}

// Reloader refreshes every dashboard view after a successful import.
type Reloader interface {
	Reload(reason string) dashboard.View
}

// Notifier announces finished imports.
type Notifier interface {
	BroadcastImportCompleted(tally models.ImportTally)
}

// Upload is one user-selected file. A nil Body means no file was selected.
type Upload struct {
	Filename  string
	Body      []byte
	CSRFToken string
}

// Result is a successful import.
type Result struct {
	ID      string                `json:"id"`
	Message string                `json:"message"`
	Tally   models.ImportTally    `json:"tally"`
	Results []models.ImportResult `json:"results"`
}

// Importer forwards edited CSV files to the catalog. Each call sends exactly
// one request; nothing is retried.
type Importer struct {
	uploader Uploader
	reloader Reloader
	notifier Notifier
}

// NewImporter creates an Importer. reloader and notifier may be nil.
func NewImporter(uploader Uploader, reloader Reloader, notifier Notifier) *Importer {
	return &Importer{uploader: uploader, reloader: reloader, notifier: notifier}
}

// Import validates up, posts its bytes unmodified and interprets the reply.
//
// A reply carrying an error, with any status, is returned as *ServerError and
// leaves the dashboard untouched. Other non-2xx replies come back as
// *catalog.HTTPError. On success every cached view is reloaded, even when no
// row changed.
func (im *Importer) Import(ctx context.Context, up Upload) (*Result, error) {
	if err := validate(up); err != nil {
		metrics.ImportsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	id := uuid.NewString()
	ctx = logging.ContextWithCorrelationID(ctx, id)
	log := logging.Ctx(ctx)
	start := time.Now()

	log.Info().
		Str("filename", up.Filename).
		Int("bytes", len(up.Body)).
		Str("csrf_token", logging.SanitizeToken(up.CSRFToken)).
		Msg("Uploading house CSV")

	resp, err := im.uploader.UpdateHouseInfo(ctx, up.Body, up.CSRFToken)
	if err != nil {
		var he *catalog.HTTPError
		if errors.As(err, &he) && he.Message != "" {
			metrics.ImportsTotal.WithLabelValues("server_error").Inc()
			log.Warn().Int("status", he.StatusCode).Str("error", he.Message).Msg("Catalog refused house import")
			return nil, &ServerError{StatusCode: he.StatusCode, Message: he.Message}
		}
		metrics.ImportsTotal.WithLabelValues("failure").Inc()
		log.Error().Err(err).Msg("House import failed")
		return nil, fmt.Errorf("upload houses: %w", err)
	}
	if resp.Error != "" {
		metrics.ImportsTotal.WithLabelValues("server_error").Inc()
		log.Warn().Str("error", resp.Error).Msg("Catalog refused house import")
		return nil, &ServerError{Message: resp.Error, Details: resp.Details}
	}

	tally := resp.Tally()
	metrics.ImportsTotal.WithLabelValues("success").Inc()
	metrics.RecordImportResults(tally.Created, tally.Updated, tally.Failed)
	log.Info().
		Int("results", tally.Total).
		Int("created", tally.Created).
		Int("updated", tally.Updated).
		Int("failed", tally.Failed).
		Dur("duration", time.Since(start)).
		Msg("Houses imported")

	if im.reloader != nil {
		im.reloader.Reload(dashboard.ReasonImport)
	}
	if im.notifier != nil {
		im.notifier.BroadcastImportCompleted(tally)
	}

	results := resp.Results
	if results == nil {
		results = []models.ImportResult{}
	}
	return &Result{
		ID:      id,
		Message: fmt.Sprintf("Successfully updated %d houses", len(resp.Results)),
		Tally:   tally,
		Results: results,
	}, nil
}

func validate(up Upload) error {
	if up.Body == nil {
		return ErrNoFile
	}
	if !housecsv.IsCSVFilename(up.Filename) {
		return ErrNotCSV
	}
	if up.CSRFToken == "" {
		return ErrMissingCSRF
	}
	return nil
}

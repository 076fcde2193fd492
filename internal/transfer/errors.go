// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package transfer

import (
	"errors"

	"github.com/goccy/go-json"
)

// Pre-flight and export errors. Their text is shown to users as-is.
//
//nolint:staticcheck // user-facing sentences
var (
	ErrNoFile      = errors.New("Please select a CSV file to upload.")
	ErrNotCSV      = errors.New("Please select a valid CSV file.")
	ErrMissingCSRF = errors.New("CSRF token not found. Please refresh the page and try again.")
	ErrNoHouses    = errors.New("No houses found to export.")
)

// ServerError is an import the catalog refused with an {error} body.
// StatusCode is 0 when the refusal came with a 2xx status.
type ServerError struct {
	StatusCode int
	Message    string
	Details    json.RawMessage
}

func (e *ServerError) Error() string {
	return "Error updating houses: " + e.Message
}

// Preflight reports whether err was raised before anything was sent to the
// catalog.
func Preflight(err error) bool {
	return errors.Is(err, ErrNoFile) || errors.Is(err, ErrNotCSV) || errors.Is(err, ErrMissingCSRF)
}

// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package catalog

import (
	"errors"
	"fmt"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a request
// without contacting the catalog.
var ErrCircuitOpen = errors.New("circuit breaker open: catalog unavailable")

// HTTPError is a non-2xx reply to a CSV upload.
type HTTPError struct {
	StatusCode int
	Message    string
}

// Error renders "HTTP <status>: <message>", with "Unknown error" when the
// catalog sent no message.
func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "Unknown error"
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, msg)
}

// HTTPStatus returns the status code.
func (e *HTTPError) HTTPStatus() int { return e.StatusCode }

// StatusError is a non-2xx reply to a read endpoint. Body holds at most 64KB of
// the response for logging and is not part of the message.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! Status: %d", e.StatusCode)
}

// HTTPStatus returns the status code.
func (e *StatusError) HTTPStatus() int { return e.StatusCode }

// clientError reports whether err is a 4xx reply other than 429. Such replies
// mean the catalog is up, so they do not count against the circuit breaker.
func clientError(err error) bool {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode >= 400 && he.StatusCode < 500 && he.StatusCode != 429
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 400 && se.StatusCode < 500 && se.StatusCode != 429
	}
	return false
}

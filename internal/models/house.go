// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package models

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// HouseRecord is a denormalized perfume house row as returned by the catalog.
//
// Values keep their JSON shape (string, json.Number, bool, nil, nested
// values) because the CSV codec applies different fallbacks depending on
// whether a field is a string.
type HouseRecord map[string]any

// Value returns the raw value for a field and whether it was present.
func (h HouseRecord) Value(field string) (any, bool) {
	if h == nil {
		return nil, false
	}
	v, ok := h[field]
	return v, ok
}

// Name returns the house name when it is a string.
func (h HouseRecord) Name() string {
	if s, ok := h["name"].(string); ok {
		return s
	}
	return ""
}

// HousesResponse is the catalog's house listing.
//
// The endpoint answers either {"houses": [...]} or a bare array; both forms
// decode into Houses.
type HousesResponse struct {
	Houses []HouseRecord `json:"houses"`
}

// UnmarshalJSON accepts the wrapped and the bare array form.
func (r *HousesResponse) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		r.Houses = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	if trimmed[0] == '[' {
		var houses []HouseRecord
		if err := dec.Decode(&houses); err != nil {
			return fmt.Errorf("houses: %w", err)
		}
		r.Houses = houses
		return nil
	}

	var wrapped struct {
		Houses []HouseRecord `json:"houses"`
	}
	if err := dec.Decode(&wrapped); err != nil {
		return fmt.Errorf("houses: %w", err)
	}
	r.Houses = wrapped.Houses
	return nil
}

// Import result statuses reported by the catalog
const (
	ImportStatusCreated = "created"
	ImportStatusUpdated = "updated"
	ImportStatusError   = "error"
)

// ImportResult is one row outcome of a CSV import.
type ImportResult struct {
	Name   string `json:"name,omitempty"`
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// UnmarshalJSON tolerates non-object entries; only the number of results is
// part of the catalog's contract.
func (r *ImportResult) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*r = ImportResult{}
		return nil
	}
	type alias ImportResult
	var a alias
	if err := json.Unmarshal(trimmed, &a); err != nil {
		*r = ImportResult{}
		return nil //nolint:nilerr // malformed rows still count toward the total
	}
	*r = ImportResult(a)
	return nil
}

// ImportResponse is the catalog's reply to a CSV upload: either Error is set
// or Results lists per-row outcomes. Details carries parser diagnostics as
// sent by the catalog (usually an array).
type ImportResponse struct {
	Results []ImportResult  `json:"results,omitempty"`
	Error   string          `json:"error,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

// ImportTally counts import results per status.
type ImportTally struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// Tally counts results by status. Unknown statuses only count toward Total.
func (r *ImportResponse) Tally() ImportTally {
	t := ImportTally{Total: len(r.Results)}
	for _, res := range r.Results {
		switch res.Status {
		case ImportStatusCreated:
			t.Created++
		case ImportStatusUpdated:
			t.Updated++
		case ImportStatusError:
			t.Failed++
		}
	}
	return t
}

// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTimeframe is returned when a timeframe is not week, month or all.
var ErrInvalidTimeframe = errors.New("invalid timeframe")

// Timeframe is the aggregation window for statistics.
type Timeframe string

// Supported timeframes
const (
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeAll   Timeframe = "all"
)

// DefaultTimeframe is used when the dashboard starts.
const DefaultTimeframe = TimeframeMonth

// Timeframes lists every supported timeframe.
func Timeframes() []Timeframe {
	return []Timeframe{TimeframeWeek, TimeframeMonth, TimeframeAll}
}

// Valid reports whether t is a supported timeframe.
func (t Timeframe) Valid() bool {
	switch t {
	case TimeframeWeek, TimeframeMonth, TimeframeAll:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (t Timeframe) String() string {
	return string(t)
}

// ParseTimeframe parses a case-insensitive timeframe name.
// An empty string yields DefaultTimeframe.
func ParseTimeframe(s string) (Timeframe, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultTimeframe, nil
	}
	t := Timeframe(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q (want week, month or all)", ErrInvalidTimeframe, s)
	}
	return t, nil
}

// DataQualityStats is an immutable snapshot of catalog data quality.
// Field names follow the catalog's wire format so snapshots pass through the
// console unchanged.
type DataQualityStats struct {
	TotalMissing    int `json:"totalMissing"`
	TotalDuplicates int `json:"totalDuplicates"`

	// MissingByBrand and DuplicatesByBrand keep the catalog's key order.
	MissingByBrand    BrandCounts `json:"missingByBrand"`
	DuplicatesByBrand BrandCounts `json:"duplicatesByBrand"`

	TotalMissingHouseInfo   *int        `json:"totalMissingHouseInfo,omitempty"`
	MissingHouseInfoByBrand BrandCounts `json:"missingHouseInfoByBrand,omitempty"`

	TotalHousesNoPerfumes *int           `json:"totalHousesNoPerfumes,omitempty"`
	HousesNoPerfumes      []HouseSummary `json:"housesNoPerfumes,omitempty"`

	HistoryData *HistoryData `json:"historyData,omitempty"`

	LastUpdated string `json:"lastUpdated"`
}

// HistoryData holds the daily trend series.
//
// Dates, Missing and Duplicates are expected to be index-aligned. Nothing
// checks that; consumers read them as-is.
type HistoryData struct {
	Dates      []string `json:"dates"`
	Missing    []int    `json:"missing"`
	Duplicates []int    `json:"duplicates"`
}

// Aligned reports whether the three series have the same length.
func (h *HistoryData) Aligned() bool {
	if h == nil {
		return true
	}
	return len(h.Dates) == len(h.Missing) && len(h.Dates) == len(h.Duplicates)
}

// HouseSummary identifies a house that has no perfumes attached.
type HouseSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// CacheStatus is the lifecycle state of a cached stats entry.
type CacheStatus string

// Cache entry states
const (
	CacheStatusIdle    CacheStatus = "idle"
	CacheStatusLoading CacheStatus = "loading"
	CacheStatusError   CacheStatus = "error"
)

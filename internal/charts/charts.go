// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

/*
Package charts projects a data quality snapshot into chart-ready series.

Every function is pure and accepts a nil snapshot, returning empty (non-nil)
slices so the JSON payload always carries arrays rather than nulls.

Top-N charts take the first TopN entries in the order the catalog sent them.
They are not sorted by count:

	stats.MissingByBrand = {"C": 9, "A": 5, "B": 1}
	TopMissingByBrand(stats) // labels [C A B], values [9 5 1]

The house info breakdown only knows how many fields each house is missing,
not which ones, so it emits one "Field missing" placeholder per missing field.
*/
package charts

import (
	"github.com/tomtom215/voodoo-quality/internal/models"
)

// TopN is the number of leading entries kept by the per-brand charts.
const TopN = 10

// Dataset labels shown in chart legends
const (
	LabelMissingInformation = "Missing Information"
	LabelDuplicateEntries   = "Duplicate Entries"
	LabelMissingHouseInfo   = "Missing House Info"
)

// FieldMissingPlaceholder stands in for each missing field of a house.
const FieldMissingPlaceholder = "Field missing"

// BarChart is a single-series bar chart.
type BarChart struct {
	Label  string   `json:"label"`
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// Series is one named line of a trend chart.
type Series struct {
	Name   string `json:"name"`
	Values []int  `json:"values"`
}

// TrendChart is the daily history chart.
type TrendChart struct {
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// HouseFields lists placeholder entries for one house's missing fields.
type HouseFields struct {
	House  string   `json:"house"`
	Fields []string `json:"fields"`
}

// Bundle aggregates every chart for one render.
type Bundle struct {
	Missing          BarChart      `json:"missing"`
	Duplicates       BarChart      `json:"duplicates"`
	MissingHouseInfo BarChart      `json:"missing_house_info"`
	Trend            TrendChart    `json:"trend"`
	Breakdown        []HouseFields `json:"missing_house_info_breakdown"`
}

// TopMissingByBrand charts the first TopN entries of MissingByBrand.
func TopMissingByBrand(stats *models.DataQualityStats) BarChart {
	if stats == nil {
		return topN(LabelMissingInformation, nil)
	}
	return topN(LabelMissingInformation, stats.MissingByBrand)
}

// TopDuplicatesByBrand charts the first TopN entries of DuplicatesByBrand.
func TopDuplicatesByBrand(stats *models.DataQualityStats) BarChart {
	if stats == nil {
		return topN(LabelDuplicateEntries, nil)
	}
	return topN(LabelDuplicateEntries, stats.DuplicatesByBrand)
}

// TopMissingHouseInfo charts the first TopN entries of MissingHouseInfoByBrand.
func TopMissingHouseInfo(stats *models.DataQualityStats) BarChart {
	if stats == nil {
		return topN(LabelMissingHouseInfo, nil)
	}
	return topN(LabelMissingHouseInfo, stats.MissingHouseInfoByBrand)
}

func topN(label string, counts models.BrandCounts) BarChart {
	head := counts.Head(TopN)
	return BarChart{
		Label:  label,
		Labels: head.Names(),
		Values: head.Counts(),
	}
}

// TrendSeries builds the history chart. Without history it returns empty
// labels and no series. Series lengths are copied as-is; a mismatch between
// dates and values is left for the caller to notice.
func TrendSeries(stats *models.DataQualityStats) TrendChart {
	if stats == nil || stats.HistoryData == nil {
		return TrendChart{Labels: []string{}, Series: []Series{}}
	}
	h := stats.HistoryData
	return TrendChart{
		Labels: nonNilStrings(h.Dates),
		Series: []Series{
			{Name: LabelMissingInformation, Values: nonNilInts(h.Missing)},
			{Name: LabelDuplicateEntries, Values: nonNilInts(h.Duplicates)},
		},
	}
}

// MaxBreakdownFields caps the placeholders listed for one house. A house
// record has 13 fields, so a larger count is corrupt data.
const MaxBreakdownFields = 100

// MissingHouseInfoBreakdown returns, per house and in catalog order, one
// placeholder per missing field. Negative counts yield no placeholders and
// counts above MaxBreakdownFields are clamped to it.
func MissingHouseInfoBreakdown(stats *models.DataQualityStats) []HouseFields {
	if stats == nil {
		return []HouseFields{}
	}
	out := make([]HouseFields, 0, len(stats.MissingHouseInfoByBrand))
	for _, bc := range stats.MissingHouseInfoByBrand {
		n := min(max(bc.Count, 0), MaxBreakdownFields)
		fields := make([]string, n)
		for i := range fields {
			fields[i] = FieldMissingPlaceholder
		}
		out = append(out, HouseFields{House: bc.Name, Fields: fields})
	}
	return out
}

// PrepareAll computes every chart for a snapshot.
func PrepareAll(stats *models.DataQualityStats) Bundle {
	return Bundle{
		Missing:          TopMissingByBrand(stats),
		Duplicates:       TopDuplicatesByBrand(stats),
		MissingHouseInfo: TopMissingHouseInfo(stats),
		Trend:            TrendSeries(stats),
		Breakdown:        MissingHouseInfoBreakdown(stats),
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func nonNilInts(s []int) []int {
	if s == nil {
		return []int{}
	}
	out := make([]int, len(s))
	copy(out, s)
	return out
}

// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package charts

import (
	"reflect"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/voodoo-quality/internal/models"
)

func decodeStats(t *testing.T, input string) *models.DataQualityStats {
	t.Helper()
	var stats models.DataQualityStats
	if err := json.Unmarshal([]byte(input), &stats); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	return &stats
}

func TestTopMissingByBrand_HappyPath(t *testing.T) {
	stats := decodeStats(t, `{"missingByBrand":{"Dior":3,"Chanel":1}}`)

	got := TopMissingByBrand(stats)
	if !reflect.DeepEqual(got.Labels, []string{"Dior", "Chanel"}) {
		t.Errorf("Labels = %v, want [Dior Chanel]", got.Labels)
	}
	if !reflect.DeepEqual(got.Values, []int{3, 1}) {
		t.Errorf("Values = %v, want [3 1]", got.Values)
	}
	if got.Label != LabelMissingInformation {
		t.Errorf("Label = %q, want %q", got.Label, LabelMissingInformation)
	}
}

func TestTopN_KeepsInsertionOrder(t *testing.T) {
	// K and L carry the largest values but arrive last.
	stats := decodeStats(t, `{
		"missingByBrand": {"A":5,"B":1,"C":9,"D":2,"E":0,"F":3,"G":4,"H":6,"I":7,"J":8,"K":100,"L":0},
		"duplicatesByBrand": {"A":5,"B":1,"C":9,"D":2,"E":0,"F":3,"G":4,"H":6,"I":7,"J":8,"K":100,"L":0},
		"missingHouseInfoByBrand": {"A":5,"B":1,"C":9,"D":2,"E":0,"F":3,"G":4,"H":6,"I":7,"J":8,"K":100,"L":0}
	}`)

	wantLabels := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	wantValues := []int{5, 1, 9, 2, 0, 3, 4, 6, 7, 8}

	for name, chart := range map[string]BarChart{
		"missing":            TopMissingByBrand(stats),
		"duplicates":         TopDuplicatesByBrand(stats),
		"missing house info": TopMissingHouseInfo(stats),
	} {
		if !reflect.DeepEqual(chart.Labels, wantLabels) {
			t.Errorf("%s: Labels = %v, want %v", name, chart.Labels, wantLabels)
		}
		if !reflect.DeepEqual(chart.Values, wantValues) {
			t.Errorf("%s: Values = %v, want %v", name, chart.Values, wantValues)
		}
	}
}

func TestTrendSeries(t *testing.T) {
	t.Run("absent history", func(t *testing.T) {
		got := TrendSeries(decodeStats(t, `{}`))
		if got.Labels == nil || len(got.Labels) != 0 {
			t.Errorf("Labels = %#v, want empty non-nil", got.Labels)
		}
		if got.Series == nil || len(got.Series) != 0 {
			t.Errorf("Series = %#v, want empty non-nil", got.Series)
		}
	})

	t.Run("two named series", func(t *testing.T) {
		got := TrendSeries(decodeStats(t, `{"historyData":{"dates":["d1","d2"],"missing":[4,3],"duplicates":[1,0]}}`))
		if !reflect.DeepEqual(got.Labels, []string{"d1", "d2"}) {
			t.Errorf("Labels = %v", got.Labels)
		}
		if len(got.Series) != 2 {
			t.Fatalf("len(Series) = %d, want 2", len(got.Series))
		}
		if got.Series[0].Name != "Missing Information" || !reflect.DeepEqual(got.Series[0].Values, []int{4, 3}) {
			t.Errorf("Series[0] = %+v", got.Series[0])
		}
		if got.Series[1].Name != "Duplicate Entries" || !reflect.DeepEqual(got.Series[1].Values, []int{1, 0}) {
			t.Errorf("Series[1] = %+v", got.Series[1])
		}
	})

	t.Run("misaligned lengths pass through", func(t *testing.T) {
		got := TrendSeries(decodeStats(t, `{"historyData":{"dates":["d1","d2","d3"],"missing":[4],"duplicates":[]}}`))
		if len(got.Labels) != 3 {
			t.Errorf("len(Labels) = %d, want 3", len(got.Labels))
		}
		if len(got.Series[0].Values) != 1 {
			t.Errorf("len(missing) = %d, want 1", len(got.Series[0].Values))
		}
		if len(got.Series[1].Values) != 0 {
			t.Errorf("len(duplicates) = %d, want 0", len(got.Series[1].Values))
		}
	})
}

func TestMissingHouseInfoBreakdown(t *testing.T) {
	stats := decodeStats(t, `{"missingHouseInfoByBrand":{"Maison B":2,"Atelier A":0,"Broken":-3}}`)

	got := MissingHouseInfoBreakdown(stats)
	want := []HouseFields{
		{House: "Maison B", Fields: []string{"Field missing", "Field missing"}},
		{House: "Atelier A", Fields: []string{}},
		{House: "Broken", Fields: []string{}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Breakdown = %+v, want %+v", got, want)
	}
}

func TestMissingHouseInfoBreakdown_ClampsCorruptCounts(t *testing.T) {
	stats := decodeStats(t, `{"missingHouseInfoByBrand":{"Corrupt":900000000,"Edge":100}}`)

	got := MissingHouseInfoBreakdown(stats)
	if len(got) != 2 {
		t.Fatalf("Breakdown = %d houses, want 2", len(got))
	}
	for _, hf := range got {
		if len(hf.Fields) != MaxBreakdownFields {
			t.Errorf("%s: %d placeholders, want %d", hf.House, len(hf.Fields), MaxBreakdownFields)
		}
	}
	// The bar chart keeps the catalog's number.
	if v := TopMissingHouseInfo(stats).Values[0]; v != 900000000 {
		t.Errorf("chart value = %d", v)
	}
}

func TestPrepareAll_Nil(t *testing.T) {
	got := PrepareAll(nil)

	for name, chart := range map[string]BarChart{
		"missing":            got.Missing,
		"duplicates":         got.Duplicates,
		"missing house info": got.MissingHouseInfo,
	} {
		if chart.Labels == nil || len(chart.Labels) != 0 {
			t.Errorf("%s: Labels = %#v, want empty", name, chart.Labels)
		}
		if chart.Values == nil || len(chart.Values) != 0 {
			t.Errorf("%s: Values = %#v, want empty", name, chart.Values)
		}
	}
	if len(got.Trend.Labels) != 0 || len(got.Trend.Series) != 0 {
		t.Errorf("Trend = %+v, want empty", got.Trend)
	}
	if got.Breakdown == nil || len(got.Breakdown) != 0 {
		t.Errorf("Breakdown = %#v, want empty", got.Breakdown)
	}

	// Empty slices render as JSON arrays, never null
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"missing":{"label":"Missing Information","labels":[],"values":[]},` +
		`"duplicates":{"label":"Duplicate Entries","labels":[],"values":[]},` +
		`"missing_house_info":{"label":"Missing House Info","labels":[],"values":[]},` +
		`"trend":{"labels":[],"series":[]},` +
		`"missing_house_info_breakdown":[]}`
	if string(data) != want {
		t.Errorf("Marshal =\n%s\nwant\n%s", data, want)
	}
}

func TestPrepareAll_Bundles(t *testing.T) {
	stats := decodeStats(t, `{
		"missingByBrand":{"Dior":3},
		"duplicatesByBrand":{"Chanel":2},
		"missingHouseInfoByBrand":{"Guerlain":1},
		"historyData":{"dates":["d1"],"missing":[3],"duplicates":[2]}
	}`)

	got := PrepareAll(stats)
	if got.Missing.Labels[0] != "Dior" || got.Duplicates.Labels[0] != "Chanel" || got.MissingHouseInfo.Labels[0] != "Guerlain" {
		t.Errorf("unexpected bar labels: %+v", got)
	}
	if len(got.Trend.Series) != 2 {
		t.Errorf("len(Trend.Series) = %d, want 2", len(got.Trend.Series))
	}
	if len(got.Breakdown) != 1 || len(got.Breakdown[0].Fields) != 1 {
		t.Errorf("Breakdown = %+v", got.Breakdown)
	}
}

func TestTransformsDoNotAliasSnapshot(t *testing.T) {
	stats := decodeStats(t, `{"historyData":{"dates":["d1"],"missing":[3],"duplicates":[2]}}`)
	chart := TrendSeries(stats)
	chart.Labels[0] = "mutated"
	chart.Series[0].Values[0] = 99

	if stats.HistoryData.Dates[0] != "d1" || stats.HistoryData.Missing[0] != 3 {
		t.Error("TrendSeries must copy history slices")
	}
}

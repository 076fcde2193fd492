// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

/*
Package models defines the data structures shared by the console.

Key Components:

  - DataQualityStats: the catalog's data quality snapshot (missing fields,
    duplicates, houses without perfumes, daily history)
  - BrandCounts: an insertion-ordered name -> count object
  - Timeframe: week, month or all
  - HouseRecord: one perfume house row, kept in its JSON shape for CSV export
  - ImportResponse: the catalog's reply to a CSV upload

Wire Format:

Snapshot and house fields use the catalog's camelCase names so the console can
forward them without translation:

	{
	  "totalMissing": 4,
	  "missingByBrand": {"Dior": 3, "Chanel": 1},
	  "historyData": {"dates": ["2026-01-01"], "missing": [4], "duplicates": [0]},
	  "lastUpdated": "2026-01-01T00:00:00.000Z"
	}

Ordering:

JSON objects carry no order in Go maps. BrandCounts decodes object keys in
document order, because the dashboard's "top N" charts take the first N keys
as the catalog sent them rather than the N largest values.
*/
package models

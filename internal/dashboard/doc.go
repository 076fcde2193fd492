// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

// Package dashboard is the data quality view model: the selected timeframe,
// stats and chart series for it, manual and forced refresh, and full reloads
// after an import.
package dashboard

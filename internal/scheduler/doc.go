// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

// Package scheduler runs the nightly forced regeneration of data quality
// statistics on a standard five-field cron expression.
package scheduler

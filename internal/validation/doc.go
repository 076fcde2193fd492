// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

// Package validation wraps go-playground/validator v10 with a shared,
// lazily built validator and human-readable messages.
//
// Request structs declare their rules in tags and are checked before any
// work is done:
//
//	type DataQualityRequest struct {
//	    Timeframe string `query:"timeframe" validate:"omitempty,oneof=week month all"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // 400 with apiErr.Code "VALIDATION_ERROR"
//	}
//
// A rejected timeframe reads "timeframe must be one of: week month all".
package validation

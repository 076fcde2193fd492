// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package logging

import "unicode/utf8"

// SanitizeToken masks a CSRF or session token for logging, keeping only the
// first 4 characters.
//
//	SanitizeToken("a1b2c3d4e5") // "a1b2***"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 4 {
		return "***"
	}
	return token[:4] + "***"
}

// maxLoggedBodyLen bounds upstream error bodies copied into log fields.
const maxLoggedBodyLen = 200

// TruncateBody shortens s to at most maxLoggedBodyLen bytes on a rune boundary.
func TruncateBody(s string) string {
	if len(s) <= maxLoggedBodyLen {
		return s
	}
	cut := maxLoggedBodyLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

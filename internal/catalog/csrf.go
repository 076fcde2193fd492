// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package catalog

import (
	"net/http"
	"strings"
)

// DefaultCSRFCookie is the cookie the catalog sets alongside its forms.
const DefaultCSRFCookie = "_csrf"

// TokenSource yields the CSRF token forwarded with an upload.
type TokenSource interface {
	CSRFToken() string
}

// StaticToken is a fixed token, typically from CATALOG_CSRF_TOKEN.
type StaticToken string

// CSRFToken implements TokenSource.
func (t StaticToken) CSRFToken() string { return string(t) }

// RequestToken reads the token from an incoming browser request: the
// X-CSRF-Token header first, then the named cookie.
type RequestToken struct {
	Request    *http.Request
	CookieName string
}

// CSRFToken implements TokenSource.
func (t RequestToken) CSRFToken() string {
	if t.Request == nil {
		return ""
	}
	if v := strings.TrimSpace(t.Request.Header.Get(CSRFHeader)); v != "" {
		return v
	}
	name := t.CookieName
	if name == "" {
		name = DefaultCSRFCookie
	}
	if c, err := t.Request.Cookie(name); err == nil {
		return c.Value
	}
	return ""
}

// FirstToken returns the first non-empty token among sources.
func FirstToken(sources ...TokenSource) string {
	for _, s := range sources {
		if s == nil {
			continue
		}
		if v := s.CSRFToken(); v != "" {
			return v
		}
	}
	return ""
}

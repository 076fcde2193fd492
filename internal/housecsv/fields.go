// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package housecsv

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/voodoo-quality/internal/models"
)

// isoMillis matches the catalog's timestamp rendering.
const isoMillis = "2006-01-02T15:04:05.000Z"

// FormatField renders one field of rec before quoting.
//
// Field rules:
//   - id: the raw value, or "" when absent
//   - type: the type when it is a string; otherwise the name when truthy;
//     otherwise the raw type, or ""
//   - address: the address when it is a string; otherwise the raw type, or ""
//   - createdAt, updatedAt: "" when falsy; strings pass through; anything else
//     is rendered as an ISO-8601 UTC timestamp
//   - everything else: the raw value, or "" when absent or null
//
// The address rule falls back to type, not name. It is kept as written until
// the catalog owners decide whether that is intended.
func FormatField(field string, rec models.HouseRecord) string {
	switch field {
	case "type":
		return formatType(rec)
	case "address":
		return formatAddress(rec)
	case "createdAt", "updatedAt":
		v, _ := rec.Value(field)
		return formatDate(v)
	default:
		v, _ := rec.Value(field)
		return formatValue(v)
	}
}

func formatType(rec models.HouseRecord) string {
	typ, _ := rec.Value("type")
	if s, ok := typ.(string); ok {
		return s
	}
	if name, _ := rec.Value("name"); truthy(name) {
		return formatValue(name)
	}
	return formatValue(typ)
}

func formatAddress(rec models.HouseRecord) string {
	addr, _ := rec.Value("address")
	if s, ok := addr.(string); ok {
		return s
	}
	typ, _ := rec.Value("type")
	return formatValue(typ)
}

func formatDate(v any) string {
	if !truthy(v) {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.UTC().Format(isoMillis)
	case *time.Time:
		return t.UTC().Format(isoMillis)
	}
	if ms, ok := epochMillis(v); ok {
		return time.UnixMilli(ms).UTC().Format(isoMillis)
	}
	return formatValue(v)
}

// epochMillis interprets numeric values as milliseconds since the Unix epoch.
func epochMillis(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return int64(f), true
		}
	case fmt.Stringer:
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

// formatValue renders a decoded JSON value as CSV text. nil becomes "".
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case time.Time:
		return t.UTC().Format(isoMillis)
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = formatValue(item)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// truthy follows the catalog's notion of an empty value: nil, "", 0, false
// and NaN are falsy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case fmt.Stringer:
		s := t.String()
		return s != "" && s != "0"
	default:
		return true
	}
}

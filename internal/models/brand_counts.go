// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package models

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// BrandCount is a single (name, count) pair of a per-brand or per-house tally.
type BrandCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// BrandCounts is a JSON object of name -> count that remembers the order in
// which keys appeared on the wire. Chart truncation walks this order, so the
// type must never be replaced by a Go map.
type BrandCounts []BrandCount

// Len returns the number of entries.
func (b BrandCounts) Len() int {
	return len(b)
}

// Names returns the keys in insertion order.
func (b BrandCounts) Names() []string {
	names := make([]string, len(b))
	for i, bc := range b {
		names[i] = bc.Name
	}
	return names
}

// Counts returns the values in insertion order.
func (b BrandCounts) Counts() []int {
	counts := make([]int, len(b))
	for i, bc := range b {
		counts[i] = bc.Count
	}
	return counts
}

// Get returns the count for name.
func (b BrandCounts) Get(name string) (int, bool) {
	for _, bc := range b {
		if bc.Name == name {
			return bc.Count, true
		}
	}
	return 0, false
}

// Set updates an existing key in place or appends a new one at the end,
// matching how a JavaScript object keeps its first insertion position.
func (b *BrandCounts) Set(name string, count int) {
	for i := range *b {
		if (*b)[i].Name == name {
			(*b)[i].Count = count
			return
		}
	}
	*b = append(*b, BrandCount{Name: name, Count: count})
}

// Head returns at most n leading entries.
func (b BrandCounts) Head(n int) BrandCounts {
	if n < 0 {
		n = 0
	}
	if len(b) <= n {
		return b
	}
	return b[:n]
}

// MarshalJSON writes the entries as a JSON object in insertion order.
func (b BrandCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, bc := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(bc.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to encode key %q: %w", bc.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(bc.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping key order. A null document yields
// an empty set. Duplicate keys keep their first position and the last value.
// Null or non-numeric values count as zero.
func (b *BrandCounts) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("brand counts: %w", err)
	}
	if tok == nil {
		*b = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("brand counts: expected object, got %v", tok)
	}

	out := make(BrandCounts, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("brand counts: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("brand counts: unexpected key %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("brand counts: value for %q: %w", key, err)
		}
		out.Set(key, countFromRaw(raw))
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("brand counts: %w", err)
	}

	*b = out
	return nil
}

// countFromRaw converts a raw JSON value to an integer count.
func countFromRaw(raw []byte) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == 'n' {
		return 0
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		raw = []byte(s)
	}
	if n, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
		return int(n)
	}
	if f, err := strconv.ParseFloat(string(raw), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}
	return 0
}

// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

// Package housecsv encodes perfume house records into the bulk-edit CSV format.
//
// The column order is the contract with the catalog's importer:
//
//	id,name,description,image,website,country,founded,type,email,phone,address,createdAt,updatedAt
//
// The header row is written verbatim. Every data field is wrapped in double
// quotes with embedded quotes doubled, including numeric-looking values.
// Rows are separated by "\n" with no trailing newline.
//
// Decoding is intentionally absent: uploads are forwarded to the catalog as
// raw bytes and parsed there.
package housecsv

import (
	"strings"

	"github.com/tomtom215/voodoo-quality/internal/models"
)

// Filename is the suggested name for exported files.
const Filename = "perfume_houses.csv"

// ContentType is the MIME type of uploads to the catalog.
const ContentType = "text/csv"

// DownloadContentType is the MIME type of served exports.
const DownloadContentType = "text/csv; charset=utf-8"

// fields is the positional column list.
var fields = [...]string{
	"id",
	"name",
	"description",
	"image",
	"website",
	"country",
	"founded",
	"type",
	"email",
	"phone",
	"address",
	"createdAt",
	"updatedAt",
}

// FieldCount is the fixed number of columns per row.
const FieldCount = len(fields)

// Header returns a copy of the column names in order.
func Header() []string {
	out := make([]string, len(fields))
	copy(out, fields[:])
	return out
}

// Encode renders records as CSV text: the header row followed by one quoted
// row per record.
func Encode(records []models.HouseRecord) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(fields[:], ","))

	for _, rec := range records {
		sb.WriteByte('\n')
		for i, field := range fields {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(Quote(FormatField(field, rec)))
		}
	}
	return sb.String()
}

// EncodeBytes is Encode returning a byte slice.
func EncodeBytes(records []models.HouseRecord) []byte {
	return []byte(Encode(records))
}

// Quote wraps s in double quotes, doubling any embedded quote.
func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// IsCSVFilename reports whether name ends in ".csv" (case-insensitive).
func IsCSVFilename(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".csv")
}

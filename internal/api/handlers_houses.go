// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/tomtom215/voodoo-quality/internal/catalog"
	"github.com/tomtom215/voodoo-quality/internal/logging"
	"github.com/tomtom215/voodoo-quality/internal/transfer"
)

// maxImportBytes bounds an uploaded house CSV.
const maxImportBytes = 10 << 20

// importFormField is the multipart field carrying the file.
const importFormField = "file"

// ExportHouses downloads the full house table as perfume_houses.csv.
func (h *Handler) ExportHouses(w http.ResponseWriter, r *http.Request) {
	export, err := h.exporter.Export(r.Context())
	if err != nil {
		if errors.Is(err, transfer.ErrNoHouses) {
			NewResponseWriter(w, r).NotFound(err.Error())
			return
		}
		h.upstreamError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("X-Row-Count", strconv.Itoa(export.Rows))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Data); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write house export")
	}
}

// ImportHouses forwards an edited CSV to the catalog. The file arrives as the
// multipart field "file" or as a raw text/csv body named by ?filename=.
func (h *Handler) ImportHouses(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	upload, err := h.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, r, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge,
				fmt.Sprintf("CSV file exceeds %d bytes", tooLarge.Limit))
			return
		}
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	if upload == nil {
		return
	}

	result, err := h.importer.Import(r.Context(), *upload)
	if err != nil {
		h.importError(w, r, err)
		return
	}

	WriteSuccess(w, r, ImportResponse{
		ID:      result.ID,
		Message: result.Message,
		Updated: result.Tally.Updated,
		Created: result.Tally.Created,
		Failed:  result.Tally.Failed,
		Results: result.Results,
	})
}

// readUpload extracts the file and CSRF token. A request without a file
// yields an Upload with a nil Body so the importer reports it.
func (h *Handler) readUpload(r *http.Request) (*transfer.Upload, error) {
	upload := &transfer.Upload{CSRFToken: h.csrfToken(r)}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()
		file, header, err := r.FormFile(importFormField)
		if errors.Is(err, http.ErrMissingFile) {
			return upload, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		defer file.Close()

		body, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		upload.Filename = header.Filename
		upload.Body = body
		return upload, nil
	}

	q := ImportQuery{Filename: r.URL.Query().Get("filename")}
	if verr := validateQuery(&q); verr != nil {
		return nil, verr
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(body) == 0 && q.Filename == "" {
		return upload, nil
	}
	upload.Filename = q.Filename
	upload.Body = body
	return upload, nil
}

// csrfToken prefers the browser's token and falls back to the configured one.
func (h *Handler) csrfToken(r *http.Request) string {
	cookie := catalog.DefaultCSRFCookie
	var static catalog.StaticToken
	if h.config != nil {
		if h.config.Upstream.CSRFCookie != "" {
			cookie = h.config.Upstream.CSRFCookie
		}
		static = catalog.StaticToken(h.config.Upstream.CSRFToken)
	}
	return catalog.FirstToken(catalog.RequestToken{Request: r, CookieName: cookie}, static)
}

func (h *Handler) importError(w http.ResponseWriter, r *http.Request, err error) {
	if transfer.Preflight(err) {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}

	var serverErr *transfer.ServerError
	if errors.As(err, &serverErr) {
		var details any
		if len(serverErr.Details) > 0 {
			details = serverErr.Details
		}
		NewResponseWriter(w, r).ErrorWithDetails(http.StatusUnprocessableEntity, ErrCodeImportRejected, serverErr.Error(), details)
		return
	}

	h.upstreamError(w, r, err)
}

// upstreamError answers a failed catalog call: 503 while the breaker is open,
// 502 otherwise. The message is the catalog-level error text.
func (h *Handler) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, catalog.ErrCircuitOpen) {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Catalog circuit open")
		NewResponseWriter(w, r).ServiceUnavailable("Catalog temporarily unavailable. Please try again shortly.")
		return
	}
	NewResponseWriter(w, r).ExternalServiceError(upstreamCause(err))
}

// upstreamCause strips local wrapping down to the catalog's own error.
func upstreamCause(err error) error {
	var he *catalog.HTTPError
	if errors.As(err, &he) {
		return he
	}
	var se *catalog.StatusError
	if errors.As(err, &se) {
		return se
	}
	return err
}

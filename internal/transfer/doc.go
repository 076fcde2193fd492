// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

/*
Package transfer moves the house table in and out of the catalog as CSV.

Export fetches every house and encodes it with housecsv. Import forwards a
user-edited file byte for byte: the console never parses uploaded CSV, the
catalog does. A successful import reloads the whole dashboard; a refused one
changes nothing.

	exp, err := transfer.NewExporter(client).Export(ctx)
	res, err := transfer.NewImporter(client, dash, hub).Import(ctx, transfer.Upload{
	    Filename:  "edited.csv",
	    Body:      data,
	    CSRFToken: token,
	})
*/
package transfer

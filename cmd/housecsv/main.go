// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

// Command housecsv exports the catalog's house table to CSV and imports an
// edited file back, without the web console.
//
//	housecsv export -out perfume_houses.csv
//	housecsv import -file edited.csv -csrf <token>
//
// The catalog URL and credentials come from the same configuration as the
// server (CATALOG_URL, CATALOG_CSRF_TOKEN, config.yaml). The -url and -csrf
// flags override them. Any failure exits with status 1.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/tomtom215/voodoo-quality/internal/catalog"
	"github.com/tomtom215/voodoo-quality/internal/config"
	"github.com/tomtom215/voodoo-quality/internal/housecsv"
	"github.com/tomtom215/voodoo-quality/internal/logging"
	"github.com/tomtom215/voodoo-quality/internal/transfer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

const usage = `usage:
  housecsv export [-out FILE] [-url URL]
  housecsv import -file FILE [-csrf TOKEN] [-url URL]
`

// run executes one subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 1
	}

	var err error
	switch args[0] {
	case "export":
		err = runExport(ctx, args[1:], stdout, stderr)
	case "import":
		err = runImport(ctx, args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		err = fmt.Errorf("unknown command %q", args[0])
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, renderError(err))
		return 1
	}
	return 0
}

// upstreamConfig loads configuration and applies the -url override.
func upstreamConfig(urlFlag string) (*config.UpstreamConfig, error) {
	if urlFlag != "" {
		// Load validates CATALOG_URL, so the flag has to be in place first.
		if err := os.Setenv("CATALOG_URL", urlFlag); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: os.Stderr,
	})
	return &cfg.Upstream, nil
}

func runExport(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("out", housecsv.Filename, "file to write, - for stdout")
	urlFlag := fs.String("url", "", "catalog base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	upstream, err := upstreamConfig(*urlFlag)
	if err != nil {
		return err
	}

	exp, err := transfer.NewExporter(catalog.NewClient(upstream)).Export(ctx)
	if err != nil {
		return err
	}

	if *out == "-" {
		_, err = stdout.Write(exp.Data)
		return err
	}
	if err := os.WriteFile(*out, exp.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	fmt.Fprintln(stdout, renderExport(*out, exp))
	return nil
}

func runImport(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "edited CSV file")
	csrf := fs.String("csrf", "", "CSRF token, defaults to CATALOG_CSRF_TOKEN")
	urlFlag := fs.String("url", "", "catalog base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	upstream, err := upstreamConfig(*urlFlag)
	if err != nil {
		return err
	}

	up := transfer.Upload{
		Filename:  filepath.Base(*file),
		CSRFToken: catalog.FirstToken(catalog.StaticToken(*csrf), catalog.StaticToken(upstream.CSRFToken)),
	}
	if *file != "" {
		body, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("read %s: %w", *file, err)
		}
		up.Body = body
	}

	// No reloader or notifier: there is no dashboard to refresh.
	res, err := transfer.NewImporter(catalog.NewClient(upstream), nil, nil).Import(ctx, up)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, renderImport(res))
	return nil
}

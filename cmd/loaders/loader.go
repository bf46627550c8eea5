// Package loaders materializes tabular datasets from the supported
// source types into engine tables: local CSV and XLSX files
// (optionally gzip or zstd compressed), objects on S3, and PostgreSQL
// tables.
package loaders

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sheetdiff/sheetdiff/cmd/engine"
)

// Static errors for source resolution
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyInput        = errors.New("input has no header row")
	ErrDuplicateHeader   = errors.New("duplicate header name")
)

// S3Options carries the credentials and addressing needed to fetch
// s3:// sources. Zero values fall back to the ambient AWS environment.
type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
}

// Options configures source loading
type Options struct {
	S3 S3Options
}

// Load resolves a source reference to a table. Three reference forms
// are recognized:
//
//	s3://bucket/key            object storage, downloaded then parsed
//	postgres://...#table       a PostgreSQL table (postgresql:// too)
//	anything else              a local file path
//
// File format is chosen by extension (.csv, .xlsx, .xls), with an
// optional .gz or .zst compression suffix.
func Load(ctx context.Context, source string, opts Options) (*engine.Table, error) {
	switch {
	case strings.HasPrefix(source, "postgres://") || strings.HasPrefix(source, "postgresql://"):
		return LoadPostgres(ctx, source)
	case strings.HasPrefix(source, "s3://"):
		path, cleanup, err := downloadS3(ctx, source, opts.S3)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		return loadFile(path)
	default:
		return loadFile(source)
	}
}

// loadFile parses a local file, unwrapping one compression layer if
// the extension calls for it.
func loadFile(path string) (*engine.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader, name, err := decompressReader(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", path, err)
	}
	defer reader.Close()

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return LoadCSV(reader)
	case ".xlsx", ".xls":
		return LoadXLSX(reader)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

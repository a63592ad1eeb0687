package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	gcsadapter "storefront/internal/adapters/out/gcs"
	"storefront/internal/infra/spreadsheet"
)

type objectReader interface {
	Read(ctx context.Context, uri string) ([]byte, error)
}

// readSource loads src (local path or gs:// URI) as CSV text.
func readSource(ctx context.Context, src, format string, objects objectReader) (string, error) {
	var (
		b   []byte
		err error
	)
	if gcsadapter.IsObjectURI(src) {
		if objects == nil {
			return "", errors.New("gs:// sources need Cloud Storage credentials")
		}
		b, err = objects.Read(ctx, src)
	} else {
		b, err = os.ReadFile(src)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", src, err)
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "xlsx":
		return spreadsheet.ToCSV(bytes.NewReader(b))
	case "csv":
		return string(b), nil
	case "", "auto":
		if spreadsheet.IsXLSX(src) {
			return spreadsheet.ToCSV(bytes.NewReader(b))
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unknown format %q (want auto, csv or xlsx)", format)
	}
}

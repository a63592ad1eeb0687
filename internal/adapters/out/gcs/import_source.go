// internal/adapters/out/gcs/import_source.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
)

// MaxImportObjectBytes caps how much of an import file is read.
const MaxImportObjectBytes = 16 << 20

var ErrNotGCSURI = errors.New("gcs: not a gs:// or storage.googleapis.com uri")

// ImportSource reads catalog import files stored in Cloud Storage.
type ImportSource struct {
	Client *storage.Client
}

func NewImportSource(client *storage.Client) *ImportSource {
	return &ImportSource{Client: client}
}

// Read downloads the object named by uri.
func (s *ImportSource) Read(ctx context.Context, uri string) ([]byte, error) {
	if s == nil || s.Client == nil {
		return nil, errors.New("gcs: storage client is nil")
	}
	bucket, object, ok := ParseObjectURI(uri)
	if !ok {
		return nil, ErrNotGCSURI
	}

	r, err := s.Client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: open gs://%s/%s: %w", bucket, object, err)
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, MaxImportObjectBytes+1))
	if err != nil {
		return nil, fmt.Errorf("gcs: read gs://%s/%s: %w", bucket, object, err)
	}
	if len(data) > MaxImportObjectBytes {
		return nil, fmt.Errorf("gcs: gs://%s/%s exceeds %d bytes", bucket, object, MaxImportObjectBytes)
	}
	return data, nil
}

// IsObjectURI reports whether uri points at Cloud Storage.
func IsObjectURI(uri string) bool {
	_, _, ok := ParseObjectURI(uri)
	return ok
}

// ParseObjectURI returns (bucket, objectPath, ok).
// Accepted forms:
//   - gs://<bucket>/<object>
//   - https://storage.googleapis.com/<bucket>/<object>
//   - https://storage.cloud.google.com/<bucket>/<object>
func ParseObjectURI(uri string) (string, string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return "", "", false
	}

	var p string
	switch strings.ToLower(parsed.Scheme) {
	case "gs":
		p = parsed.Host + "/" + strings.TrimLeft(parsed.Path, "/")
	case "https", "http":
		host := strings.ToLower(parsed.Host)
		if host != "storage.googleapis.com" && host != "storage.cloud.google.com" {
			return "", "", false
		}
		p = strings.TrimLeft(parsed.Path, "/")
	default:
		return "", "", false
	}

	parts := strings.SplitN(p, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

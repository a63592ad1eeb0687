package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storefront/internal/infra/spreadsheet"
)

type memObjects map[string][]byte

func (m memObjects) Read(_ context.Context, uri string) ([]byte, error) {
	b, ok := m[uri]
	if !ok {
		return nil, errors.New("not found")
	}
	return b, nil
}

const sampleCSV = "name,description,price,origincountry\nWidget,A nice widget,9.99,USA\n"

func TestReadSourceLocal(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "p.csv")
	if err := os.WriteFile(csvPath, []byte(sampleCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := readSource(context.Background(), csvPath, "auto", nil)
	if err != nil || got != sampleCSV {
		t.Fatalf("readSource csv = %q, %v", got, err)
	}

	xb, err := spreadsheet.FromRecords([][]string{{"name", "description", "price", "origincountry"}, {"Widget", "A nice widget", "9.99", "USA"}})
	if err != nil {
		t.Fatal(err)
	}
	xlsxPath := filepath.Join(dir, "p.xlsx")
	if err := os.WriteFile(xlsxPath, xb, 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = readSource(context.Background(), xlsxPath, "auto", nil)
	if err != nil || got != sampleCSV {
		t.Fatalf("readSource xlsx = %q, %v", got, err)
	}

	if _, err := readSource(context.Background(), csvPath, "json", nil); err == nil {
		t.Fatalf("unknown format: want error")
	}
}

func TestReadSourceObject(t *testing.T) {
	objs := memObjects{"gs://b/p.csv": []byte(sampleCSV)}
	got, err := readSource(context.Background(), "gs://b/p.csv", "", objs)
	if err != nil || got != sampleCSV {
		t.Fatalf("readSource gs = %q, %v", got, err)
	}
	if _, err := readSource(context.Background(), "gs://b/p.csv", "", nil); err == nil {
		t.Fatalf("gs without client: want error")
	}
}

func TestValidateOnlyLocal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("name,description,price\nWidget,A,1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--validate-only", path})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("want validation error")
	}
	if !strings.Contains(out.String(), "invalid (header)") {
		t.Fatalf("output = %q", out.String())
	}
}

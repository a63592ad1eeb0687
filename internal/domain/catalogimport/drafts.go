package catalogimport

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	productdom "storefront/internal/domain/product"
)

// csvRow is the gocsv mapping of one import row. Tags use the canonical
// lower-case header, so field order follows whatever order the file declares.
type csvRow struct {
	Name          string `csv:"name"`
	Description   string `csv:"description"`
	Price         string `csv:"price"`
	OriginCountry string `csv:"origincountry"`
}

// RowDraft pairs a product draft with the source line it came from.
type RowDraft struct {
	Line  int
	Draft productdom.Draft
}

// Drafts converts every row into a product draft (image reference left empty).
func (b *Batch) Drafts() ([]RowDraft, error) {
	var rows []csvRow
	if err := gocsv.UnmarshalCSV(&batchReader{b: b}, &rows); err != nil {
		return nil, fmt.Errorf("catalogimport: map rows: %w", err)
	}
	if len(rows) != len(b.Rows) {
		return nil, fmt.Errorf("catalogimport: mapped %d rows, want %d", len(rows), len(b.Rows))
	}

	out := make([]RowDraft, 0, len(rows))
	for i, r := range rows {
		price, err := decimal.NewFromString(strings.TrimSpace(r.Price))
		if err != nil {
			return nil, fmt.Errorf("catalogimport: row %d: %w", b.Rows[i].Line, err)
		}
		out = append(out, RowDraft{
			Line: b.Rows[i].Line,
			Draft: productdom.Draft{
				Name:          strings.TrimSpace(r.Name),
				Description:   strings.TrimSpace(r.Description),
				Price:         price,
				OriginCountry: strings.TrimSpace(r.OriginCountry),
			},
		})
	}
	return out, nil
}

// batchReader feeds an already parsed batch to gocsv (header first).
type batchReader struct {
	b   *Batch
	pos int
}

func (r *batchReader) Read() ([]string, error) {
	if r.pos == 0 {
		r.pos++
		return r.b.Header, nil
	}
	i := r.pos - 1
	if i >= len(r.b.Rows) {
		return nil, io.EOF
	}
	r.pos++
	return r.b.Rows[i].Fields, nil
}

func (r *batchReader) ReadAll() ([][]string, error) {
	var out [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

// internal/domain/catalogimport/batch.go
package catalogimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Canonical column names (lower-case). Header matching is case-insensitive and
// order-free; data rows follow the order the header itself declares.
const (
	ColName          = "name"
	ColDescription   = "description"
	ColPrice         = "price"
	ColOriginCountry = "origincountry"
)

// RequiredColumns is the exact header set an import file must carry.
var RequiredColumns = []string{ColName, ColDescription, ColPrice, ColOriginCountry}

// Rule identifies which validation rule rejected the input.
type Rule int

const (
	RuleRowCount Rule = iota + 1
	RuleHeader
	RuleFieldCount
	RulePrice
)

func (r Rule) String() string {
	switch r {
	case RuleRowCount:
		return "row_count"
	case RuleHeader:
		return "header"
	case RuleFieldCount:
		return "field_count"
	case RulePrice:
		return "price"
	default:
		return "unknown"
	}
}

var ErrValidation = errors.New("catalogimport: validation failed")

// ValidationError is the first rule violation found in the input.
//   - Line is the 1-based line in the source text (0 when not row specific)
//   - Columns names the offending header columns for RuleHeader
type ValidationError struct {
	Rule    Rule
	Line    int
	Columns []string
	Reason  string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Row is one non-blank data row.
type Row struct {
	Line   int
	Fields []string
}

// Batch is a validated import input.
type Batch struct {
	// Header holds canonical (lower-case, trimmed) names in declared order.
	Header []string
	Rows   []Row
}

// Validate runs every rule against raw and returns the first failure.
func Validate(raw string) error {
	_, err := Parse(raw)
	return err
}

// Parse reads raw CSV text and applies the rules in order:
//  1. header + at least one non-blank data row
//  2. header set equals RequiredColumns (case-insensitive)
//  3. every data row has as many fields as the header
//  4. every price is a number > 0
func Parse(raw string) (*Batch, error) {
	raw = strings.TrimPrefix(raw, "\ufeff")

	records, err := readRecords(raw)
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return nil, &ValidationError{
			Rule:   RuleRowCount,
			Reason: "file must contain a header row and at least one data row",
		}
	}

	header, err := checkHeader(records[0])
	if err != nil {
		return nil, err
	}

	b := &Batch{Header: header, Rows: make([]Row, 0, len(records)-1)}
	for _, rec := range records[1:] {
		if len(rec.Fields) != len(header) {
			return nil, &ValidationError{
				Rule:   RuleFieldCount,
				Line:   rec.Line,
				Reason: fmt.Sprintf("row %d: expected %d fields, got %d", rec.Line, len(header), len(rec.Fields)),
			}
		}
		b.Rows = append(b.Rows, rec)
	}

	priceIdx := b.index(ColPrice)
	for _, row := range b.Rows {
		if _, err := parsePositivePrice(row.Fields[priceIdx]); err != nil {
			return nil, &ValidationError{
				Rule:   RulePrice,
				Line:   row.Line,
				Reason: fmt.Sprintf("row %d: invalid price %q (must be a number greater than 0)", row.Line, strings.TrimSpace(row.Fields[priceIdx])),
			}
		}
	}

	return b, nil
}

// Value returns the trimmed value of column col in row.
func (b *Batch) Value(row Row, col string) string {
	i := b.index(col)
	if i < 0 || i >= len(row.Fields) {
		return ""
	}
	return strings.TrimSpace(row.Fields[i])
}

func (b *Batch) index(col string) int {
	for i, h := range b.Header {
		if h == col {
			return i
		}
	}
	return -1
}

// readRecords parses raw into non-blank records, keeping source line numbers.
func readRecords(raw string) ([]Row, error) {
	r := csv.NewReader(strings.NewReader(raw))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var out []Row
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return nil, &ValidationError{
				Rule:   RuleFieldCount,
				Line:   line,
				Reason: fmt.Sprintf("row %d: malformed csv: %v", line, err),
			}
		}
		if isBlank(fields) {
			continue
		}
		line, _ := r.FieldPos(0)
		out = append(out, Row{Line: line, Fields: fields})
	}
	return out, nil
}

func isBlank(fields []string) bool {
	return len(fields) == 0 || (len(fields) == 1 && strings.TrimSpace(fields[0]) == "")
}

func checkHeader(rec Row) ([]string, error) {
	header := make([]string, len(rec.Fields))
	seen := map[string]bool{}
	var dup []string
	for i, h := range rec.Fields {
		c := strings.ToLower(strings.TrimSpace(h))
		header[i] = c
		if seen[c] {
			dup = append(dup, c)
		}
		seen[c] = true
	}

	required := map[string]bool{}
	var missing []string
	for _, c := range RequiredColumns {
		required[c] = true
		if !seen[c] {
			missing = append(missing, c)
		}
	}
	var unexpected []string
	for c := range seen {
		if !required[c] {
			unexpected = append(unexpected, c)
		}
	}
	sort.Strings(unexpected)

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing required column(s): "+strings.Join(missing, ", "))
	}
	if len(unexpected) > 0 {
		parts = append(parts, "unexpected column(s): "+strings.Join(quoteEmpty(unexpected), ", "))
	}
	if len(dup) > 0 {
		parts = append(parts, "duplicate column(s): "+strings.Join(dup, ", "))
	}
	if len(parts) > 0 {
		cols := append(append(append([]string{}, missing...), unexpected...), dup...)
		return nil, &ValidationError{
			Rule:    RuleHeader,
			Line:    rec.Line,
			Columns: cols,
			Reason:  "invalid header: " + strings.Join(parts, "; "),
		}
	}
	return header, nil
}

func quoteEmpty(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		if c == "" {
			c = `""`
		}
		out[i] = c
	}
	return out
}

func parsePositivePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, errors.New("price must be > 0")
	}
	return d, nil
}

package mail

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/application/usecase"
)

// ImportReportMailer implements usecase.ImportReporter by mailing a summary.
type ImportReportMailer struct {
	client EmailClient
	from   string
	to     string
}

func NewImportReportMailer(client EmailClient, from, to string) *ImportReportMailer {
	return &ImportReportMailer{client: client, from: strings.TrimSpace(from), to: strings.TrimSpace(to)}
}

func (m *ImportReportMailer) ReportImport(ctx context.Context, res usecase.ImportResult) error {
	if m == nil || m.client == nil || m.to == "" {
		return nil
	}
	return m.client.Send(ctx, m.from, m.to, importSubject(res), importBody(res))
}

func importSubject(res usecase.ImportResult) string {
	switch res.Outcome {
	case usecase.ImportFull:
		return fmt.Sprintf("Catalog import complete: %d products imported", res.Imported)
	case usecase.ImportPartial:
		return fmt.Sprintf("Catalog import partially complete: %d imported, %d failed", res.Imported, res.Failed)
	default:
		return fmt.Sprintf("Catalog import failed: %d rows failed", res.Failed)
	}
}

func importBody(res usecase.ImportResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Outcome:  %s\n", res.Outcome)
	fmt.Fprintf(&b, "Imported: %d\n", res.Imported)
	fmt.Fprintf(&b, "Failed:   %d\n", res.Failed)
	if !res.StartedAt.IsZero() {
		fmt.Fprintf(&b, "Started:  %s\n", res.StartedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	}
	if len(res.Failures) > 0 {
		b.WriteString("\nFailed rows:\n")
		for _, f := range res.Failures {
			fmt.Fprintf(&b, "  line %d  %q: %v\n", f.Line, f.Name, f.Err)
		}
	}
	if res.RefreshErr != nil {
		fmt.Fprintf(&b, "\nCatalog refresh failed: %v\n", res.RefreshErr)
	}
	return b.String()
}

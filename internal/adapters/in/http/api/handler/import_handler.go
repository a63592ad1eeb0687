// internal/adapters/in/http/api/handler/import_handler.go
package apiHandler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	usecase "storefront/internal/application/usecase"
	importdom "storefront/internal/domain/catalogimport"
	"storefront/internal/infra/spreadsheet"
)

// maxImportBody caps a CSV/XLSX upload.
const maxImportBody = 16 << 20

// ImportHandler serves /api/admin/products/import (admin only).
type ImportHandler struct {
	uc   *usecase.CatalogImportUsecase
	gate adminGate
	log  *zap.Logger
}

func NewImportHandler(uc *usecase.CatalogImportUsecase, roles *usecase.RoleGate, log *zap.Logger) *ImportHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImportHandler{uc: uc, gate: adminGate{roles: roles}, log: log.Named("import_handler")}
}

type validationResponse struct {
	Valid   bool     `json:"valid"`
	Rule    string   `json:"rule,omitempty"`
	Line    int      `json:"line,omitempty"`
	Columns []string `json:"columns,omitempty"`
	Message string   `json:"message,omitempty"`
}

type rowFailureResponse struct {
	Line  int    `json:"line"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

type importResponse struct {
	Imported     int                  `json:"imported"`
	Failed       int                  `json:"failed"`
	Outcome      string               `json:"outcome"`
	Failures     []rowFailureResponse `json:"failures,omitempty"`
	RefreshError string               `json:"refreshError,omitempty"`
	Message      string               `json:"message"`
}

// POST /api/admin/products/import/validate
func (h *ImportHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if !h.gate.allow(w, r) {
		return
	}
	raw, ok := h.readText(w, r)
	if !ok {
		return
	}
	if err := h.uc.Validate(raw); err != nil {
		h.validationFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, validationResponse{Valid: true})
}

// POST /api/admin/products/import
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	if !h.gate.allow(w, r) {
		return
	}
	raw, ok := h.readText(w, r)
	if !ok {
		return
	}

	res, err := h.uc.Import(r.Context(), raw)
	if err != nil {
		h.validationFailed(w, err)
		return
	}

	out := importResponse{
		Imported: res.Imported,
		Failed:   res.Failed,
		Outcome:  string(res.Outcome),
		Message:  importMessage(res),
	}
	for _, f := range res.Failures {
		out.Failures = append(out.Failures, rowFailureResponse{Line: f.Line, Name: f.Name, Error: errString(f.Err)})
	}
	if res.RefreshErr != nil {
		out.RefreshError = res.RefreshErr.Error()
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/admin/products/import/template.xlsx
func (h *ImportHandler) Template(w http.ResponseWriter, r *http.Request) {
	if !h.gate.allow(w, r) {
		return
	}
	b, err := spreadsheet.FromRecords([][]string{
		importdom.RequiredColumns,
		{"Widget", "A nice widget", "9.99", "USA"},
	})
	if err != nil {
		h.log.Error("template build failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "Failed to build template")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="products_template.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// readText accepts a multipart "file" field (.csv or .xlsx), an xlsx body,
// or a plain text/csv body.
func (h *ImportHandler) readText(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBody)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		raw string
		err error
	)
	switch {
	case mediaType == "multipart/form-data":
		raw, err = readUpload(r)
	case spreadsheet.IsXLSX(mediaType):
		raw, err = spreadsheet.ToCSV(r.Body)
	default:
		var b []byte
		b, err = io.ReadAll(r.Body)
		raw = string(b)
	}
	if err != nil {
		h.log.Info("unreadable upload", zap.String("contentType", mediaType), zap.Error(err))
		writeErr(w, http.StatusBadRequest, "Could not read the uploaded file: "+err.Error())
		return "", false
	}
	return raw, true
}

func readUpload(r *http.Request) (string, error) {
	file, hdr, err := r.FormFile("file")
	if err != nil {
		return "", fmt.Errorf("multipart field \"file\": %w", err)
	}
	defer file.Close()

	if spreadsheet.IsXLSX(hdr.Filename) || spreadsheet.IsXLSX(hdr.Header.Get("Content-Type")) {
		return spreadsheet.ToCSV(file)
	}
	b, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *ImportHandler) validationFailed(w http.ResponseWriter, err error) {
	var ve *importdom.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, validationResponse{
			Valid:   false,
			Rule:    ve.Rule.String(),
			Line:    ve.Line,
			Columns: ve.Columns,
			Message: ve.Error(),
		})
		return
	}
	h.log.Error("import failed", zap.Error(err))
	writeErr(w, http.StatusInternalServerError, "Import failed")
}

func importMessage(res usecase.ImportResult) string {
	switch res.Outcome {
	case usecase.ImportFull:
		return fmt.Sprintf("Imported %d products.", res.Imported)
	case usecase.ImportPartial:
		return fmt.Sprintf("Imported %d products, %d failed.", res.Imported, res.Failed)
	default:
		return fmt.Sprintf("No products were imported (%d failed).", res.Failed)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimSpace(err.Error())
}

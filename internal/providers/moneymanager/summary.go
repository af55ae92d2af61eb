package moneymanager

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/saintfish/chardet"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/shahlaukik/money-manager-mcp/internal/shared/types"
)

// previewLimit bounds how much of an export is read for its preview
const previewLimit = 10 * 1024 * 1024

// SummaryOps handles period summaries and the spreadsheet export
type SummaryOps struct {
	*Ops
}

// ExportResult is the summary_export_excel result
type ExportResult struct {
	FilePath          string   `json:"filePath"`
	FileSize          int64    `json:"fileSize"`
	ContentType       string   `json:"contentType"`
	Rows              int      `json:"rows"`
	Columns           []string `json:"columns,omitempty"`
	ExtensionModified bool     `json:"extensionModified"`
	Message           string   `json:"message"`
}

// GetTools returns summary tool definitions
func (s *SummaryOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "summary_get",
			Name:        "Get Summary",
			Description: "Income and expense summary by category for a date range",
			Parameters:  periodParameters(),
			Returns:     "object",
		},
		{
			ID:   "summary_export_excel",
			Name: "Export Summary",
			Description: "Export transactions in a date range to a spreadsheet file. " +
				"The server produces an HTML-based .xls file; .xlsx paths are rewritten to .xls.",
			Parameters: append(periodParameters(),
				types.Parameter{Name: "outputPath", Type: "string", Description: "Destination file path (.xls)", Required: true},
			),
			Returns: "object",
		},
	}
}

// Get fetches the summary of a period
func (s *SummaryOps) Get(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args periodArgs
	if err := s.bind(params, &args); err != nil {
		return nil, err
	}

	resp, err := s.Upstream.Get(ctx, endpointSummary, form{fieldStartDate: args.StartDate, fieldEndDate: args.EndDate})
	if err != nil {
		return nil, err
	}
	return Success(resp)
}

// Export downloads the period as a spreadsheet
func (s *SummaryOps) Export(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args exportArgs
	if err := s.bind(params, &args); err != nil {
		return nil, err
	}

	path, corrected := xlsPath(args.OutputPath)
	file, err := s.Upstream.DownloadFile(ctx, http.MethodPost, endpointExcel, path,
		form{fieldStartDate: args.StartDate, fieldEndDate: args.EndDate})
	if err != nil {
		return nil, err
	}

	result := ExportResult{
		FilePath:          file.FilePath,
		FileSize:          file.FileSize,
		ContentType:       file.ContentType,
		ExtensionModified: corrected,
		Message:           fmt.Sprintf("Exported to %s", file.FilePath),
	}
	if corrected {
		result.Message = fmt.Sprintf(
			"Exported to %s. The extension was changed from .xlsx to .xls because the server produces an HTML-based .xls file, not XLSX.",
			file.FilePath)
	}

	if preview, err := previewExport(file.FilePath); err != nil {
		s.Log.Warn("Could not preview export", zap.String("path", file.FilePath), zap.Error(err))
	} else {
		result.Rows = preview.rows
		result.Columns = preview.columns
	}

	return Success(result)
}

// xlsPath rewrites a .xlsx extension to .xls and reports whether it did
func xlsPath(path string) (string, bool) {
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, ".xlsx") {
		return strings.TrimSuffix(path, ext) + ".xls", true
	}
	return path, false
}

type exportPreview struct {
	rows    int
	columns []string
}

// previewExport counts data rows of the HTML table the server exports and
// reads the header cells.
func previewExport(path string) (exportPreview, error) {
	f, err := os.Open(path)
	if err != nil {
		return exportPreview{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, previewLimit))
	if err != nil {
		return exportPreview{}, err
	}

	doc, err := goquery.NewDocumentFromReader(utf8Reader(data))
	if err != nil {
		return exportPreview{}, err
	}

	var preview exportPreview
	rows := doc.Find("table").First().Find("tr")
	if rows.Length() == 0 {
		return preview, nil
	}

	header := rows.First()
	header.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		preview.columns = append(preview.columns, strings.TrimSpace(cell.Text()))
	})
	preview.rows = rows.Length() - 1
	return preview, nil
}

// utf8Reader converts the export to UTF-8. Older app versions write it in
// the device's legacy code page.
func utf8Reader(data []byte) io.Reader {
	label := "utf-8"
	if result, err := chardet.NewHtmlDetector().DetectBest(data); err == nil && result != nil {
		label = strings.ToLower(result.Charset)
	}
	r, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		return bytes.NewReader(data)
	}
	return r
}

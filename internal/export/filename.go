package export

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/petfood-ae/storefront/internal/core"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ContentType returns the MIME type for the format
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// ParseFormat maps a query value to a Format, defaulting to CSV
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format %q", value)
}

// Artifact is a rendered export ready to be downloaded
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

var (
	whitespace  = regexp.MustCompile(`\s+`)
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
)

// SanitizeFilename converts whitespace to "-" and drops every character
// other than ASCII letters, digits, "-", "_" and ".".
func SanitizeFilename(name string) string {
	name = whitespace.ReplaceAllString(strings.TrimSpace(name), "-")
	return unsafeChars.ReplaceAllString(name, "")
}

// DefaultFilename builds a sanitized, date-stamped filename
func DefaultFilename(base string, format Format, now time.Time) string {
	return SanitizeFilename(fmt.Sprintf("%s-%s.%s", base, now.Format("2006-01-02"), format))
}

// ResolveFilename uses the caller's filename when given, otherwise the default.
// The format extension is appended when missing.
func ResolveFilename(explicit, base string, format Format, now time.Time) string {
	name := SanitizeFilename(explicit)
	if name == "" || strings.Trim(name, ".") == "" {
		return DefaultFilename(base, format, now)
	}
	if !strings.EqualFold(path.Ext(name), "."+string(format)) {
		name += "." + string(format)
	}
	return name
}

// SalesReportArtifact renders report in the given format
func SalesReportArtifact(report core.SalesReport, format Format, filename string) (*Artifact, error) {
	var data []byte
	switch format {
	case FormatXLSX:
		b, err := SalesWorkbook(report)
		if err != nil {
			return nil, err
		}
		data = b
	case FormatPDF:
		b, err := SalesReportPDF(report)
		if err != nil {
			return nil, err
		}
		data = b
	default:
		format = FormatCSV
		var buf bytes.Buffer
		if err := WriteSalesCSV(&buf, report); err != nil {
			return nil, fmt.Errorf("failed to write csv: %w", err)
		}
		data = buf.Bytes()
	}

	base := "sales-report-" + string(report.Stats.Period)
	return &Artifact{
		Filename:    ResolveFilename(filename, base, format, report.GeneratedAt),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

// OrdersArtifact renders orders in the given format. PDF is not offered for
// order exports and falls back to CSV.
func OrdersArtifact(orders []*core.Order, format Format, filename string, now time.Time) (*Artifact, error) {
	var data []byte
	switch format {
	case FormatXLSX:
		b, err := OrdersWorkbook(orders)
		if err != nil {
			return nil, err
		}
		data = b
	default:
		format = FormatCSV
		var buf bytes.Buffer
		if err := WriteOrdersCSV(&buf, orders); err != nil {
			return nil, fmt.Errorf("failed to write csv: %w", err)
		}
		data = buf.Bytes()
	}

	return &Artifact{
		Filename:    ResolveFilename(filename, "orders", format, now),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

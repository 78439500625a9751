package report

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

type Writer interface {
	Write(path string, report MonthlyReport) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case FormatCSV:
		return &CSVWriter{}, nil
	case FormatExcel, "xlsx":
		return &ExcelWriter{}, nil
	case FormatPDF:
		return &PDFWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// DetectFormat returns explicit when given, otherwise the format implied by
// the output file extension.
func DetectFormat(outputPath, explicit string) (string, error) {
	if format := normalizeFormat(explicit); format != "" {
		switch format {
		case FormatCSV, FormatPDF, FormatExcel:
			return format, nil
		case "xlsx":
			return FormatExcel, nil
		default:
			return "", fmt.Errorf("unsupported output format: %s", explicit)
		}
	}

	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatExcel, nil
	case ".pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("cannot detect output format from %q; use --format csv|excel|pdf", outputPath)
	}
}

// Extension returns the file extension written for format.
func Extension(format string) string {
	switch normalizeFormat(format) {
	case FormatExcel, "xlsx":
		return ".xlsx"
	case FormatPDF:
		return ".pdf"
	default:
		return ".csv"
	}
}

// FileName builds "report-2025-12.csv" style names for a month key.
func FileName(month, format string) string {
	slug := month
	if len(month) == 7 && month[2] == '/' {
		slug = month[3:] + "-" + month[:2]
	}
	return "report-" + slug + Extension(format)
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

package importer

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"clockedout/apperr"
)

// Row is one data line of the export, split into trimmed fields.
type Row struct {
	RowNumber int
	Fields    []string
}

// Table is the tokenized export: the header row plus every non-blank data row.
type Table struct {
	Headers []string
	Rows    []Row
}

// ReadCSV decodes raw export bytes (UTF-8, or UTF-16 with BOM) and tokenizes
// them line by line. Quoted fields may contain commas but not line breaks.
func ReadCSV(data []byte) (Table, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return Table{}, apperr.Wrap(apperr.FileReadError, "decode csv content", err)
	}

	content := string(decoded)
	if strings.TrimSpace(content) == "" {
		return Table{}, apperr.New(apperr.EmptyFile, "")
	}

	lines := strings.Split(content, "\n")
	headerIndex := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			headerIndex = i
			break
		}
	}

	table := Table{Headers: SplitCSVLine(strings.TrimRight(lines[headerIndex], "\r"))}
	for i := headerIndex + 1; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		table.Rows = append(table.Rows, Row{RowNumber: i + 1, Fields: SplitCSVLine(line)})
	}

	if len(table.Rows) == 0 {
		return Table{}, apperr.New(apperr.EmptyFile, "")
	}
	return table, nil
}

// SplitCSVLine splits on commas outside double quotes. A quote character
// toggles the quoted state and is dropped; each field is trimmed.
func SplitCSVLine(line string) []string {
	fields := make([]string, 0, 8)
	var current strings.Builder
	insideQuotes := false

	for _, char := range line {
		switch {
		case char == '"':
			insideQuotes = !insideQuotes
		case char == ',' && !insideQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(char)
		}
	}

	fields = append(fields, strings.TrimSpace(current.String()))
	return fields
}

// Record maps row fields onto folded header names. Callers must check
// that the field count matches the header count first.
func (t Table) Record(row Row) Record {
	values := make(map[string]string, len(t.Headers))
	for i, header := range t.Headers {
		if i < len(row.Fields) {
			values[foldHeader(header)] = row.Fields[i]
		} else {
			values[foldHeader(header)] = ""
		}
	}
	return Record{RowNumber: row.RowNumber, Values: values}
}

func (t Table) HasColumn(name string) bool {
	want := foldHeader(name)
	for _, header := range t.Headers {
		if foldHeader(header) == want {
			return true
		}
	}
	return false
}

package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Load reads a dataset from path. Files ending in .xlsx are read from their
// first sheet; anything else is parsed as CSV.
func Load(path string) (*Dataset, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return loadXLSX(path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	ds, err := ParseCSV(raw)
	if err != nil {
		return nil, err
	}
	ds.Source = path
	return ds, nil
}

// decode converts raw file bytes to UTF-8. UTF-8 and UTF-16 byte order marks
// are honoured and stripped; bytes that are not valid UTF-8 are read as Latin-1.
func decode(raw []byte) ([]byte, error) {
	if bytes.HasPrefix(raw, bomUTF16LE) || bytes.HasPrefix(raw, bomUTF16BE) || utf8.Valid(raw) {
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
		return out, err
	}
	return charmap.ISO8859_1.NewDecoder().Bytes(raw)
}

// ParseCSV parses CSV bytes into a dataset. Rows shorter than the header are
// padded with nulls; extra trailing cells are ignored.
func ParseCSV(raw []byte) (*Dataset, error) {
	decoded, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file: no header row found")
		}
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	header = trimHeader(header)

	ds := &Dataset{Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		ds.Rows = append(ds.Rows, buildRow(line, header, record))
	}
	return ds, nil
}

func loadXLSX(path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty file: no header row found")
	}

	header := trimHeader(rows[0])
	ds := &Dataset{Source: path, Header: header}
	for i, record := range rows[1:] {
		if isBlank(record) {
			continue
		}
		ds.Rows = append(ds.Rows, buildRow(i+2, header, record))
	}
	return ds, nil
}

func trimHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func buildRow(line int, header, record []string) Row {
	values := make(map[string]string, len(header))
	for i, col := range header {
		if i < len(record) {
			values[col] = record[i]
		}
	}
	return Row{Line: line, values: values}
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

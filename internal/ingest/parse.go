package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/evcraddock/estatebi/internal/preprocess"
)

// Kind identifies an upload's file format.
type Kind string

const (
	KindCSV  Kind = "csv"
	KindJSON Kind = "json"
	KindXLSX Kind = "xlsx"
)

// Label is the upper-case file type recorded in upload history.
func (k Kind) Label() string {
	return strings.ToUpper(string(k))
}

var (
	// ErrUnsupportedFormat is returned for files that are not CSV, JSON or XLSX.
	ErrUnsupportedFormat = errors.New("only CSV, JSON and XLSX files are allowed")

	// ErrParse wraps any failure to decode the file body.
	ErrParse = errors.New("could not parse file")
)

// KindFromFilename picks the format from a file extension.
func KindFromFilename(name string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return KindCSV, nil
	case ".json":
		return KindJSON, nil
	case ".xlsx":
		return KindXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(name))
	}
}

// Parse decodes an upload body into raw rows. Parse failures wrap ErrParse.
func Parse(kind Kind, data []byte) ([]preprocess.RawRecord, error) {
	var (
		records []preprocess.RawRecord
		err     error
	)

	switch kind {
	case KindCSV:
		records, err = parseCSV(bytes.NewReader(data))
	case KindJSON:
		records, err = parseJSON(data)
	case KindXLSX:
		records, err = parseXLSX(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return records, nil
}

var errMissingHeader = errors.New("missing header row")

// parseCSV reads a header row followed by data rows. Values are trimmed,
// blank lines are skipped and short rows leave trailing columns absent.
func parseCSV(r io.Reader) ([]preprocess.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	header = cleanHeader(header)

	records := []preprocess.RawRecord{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rowRecord(header, row))
	}
	return records, nil
}

// parseJSON accepts an array of objects or a single object.
func parseJSON(data []byte) ([]preprocess.RawRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty document")
	}

	switch trimmed[0] {
	case '[':
		var records []preprocess.RawRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
		if records == nil {
			records = []preprocess.RawRecord{}
		}
		return records, nil
	case '{':
		var rec preprocess.RawRecord
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return nil, err
		}
		return []preprocess.RawRecord{rec}, nil
	default:
		return nil, errors.New("expected a JSON object or array of objects")
	}
}

// parseXLSX reads the first worksheet as a header row plus data rows.
func parseXLSX(r io.Reader) (records []preprocess.RawRecord, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errMissingHeader
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, errMissingHeader
	}

	header := cleanHeader(rows[0])
	records = []preprocess.RawRecord{}
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		records = append(records, rowRecord(header, row))
	}
	return records, nil
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func rowRecord(header, row []string) preprocess.RawRecord {
	rec := make(preprocess.RawRecord, len(header))
	for i, col := range header {
		if col == "" || i >= len(row) {
			continue
		}
		rec[col] = preprocess.String(strings.TrimSpace(row[i]))
	}
	return rec
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

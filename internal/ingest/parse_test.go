package ingest

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestKindFromFilename(t *testing.T) {
	tests := []struct {
		name    string
		want    Kind
		wantErr bool
	}{
		{"props.csv", KindCSV, false},
		{"PROPS.CSV", KindCSV, false},
		{"data.json", KindJSON, false},
		{"book.xlsx", KindXLSX, false},
		{"notes.txt", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		got, err := KindFromFilename(tt.name)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("%s: error = %v, want ErrUnsupportedFormat", tt.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: kind = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestParseCSV(t *testing.T) {
	data := "\ufeffproperty_code, city ,price,description\n" +
		"CHN001,  chennai ,15000000,\"Spacious, sunny\"\n" +
		"\n" +
		"SLM001,salem\n"

	records, err := Parse(KindCSV, []byte(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.Text("property_code") != "CHN001" {
		t.Errorf("property_code = %q", first.Text("property_code"))
	}
	if first.Text("city") != "chennai" {
		t.Errorf("city = %q, want trimmed chennai", first.Text("city"))
	}
	if first.Text("description") != "Spacious, sunny" {
		t.Errorf("description = %q", first.Text("description"))
	}

	second := records[1]
	if !second.Get("price").IsNull() {
		t.Errorf("short row price should be absent, got %q", second.Text("price"))
	}
}

func TestParseCSVHeaderOnly(t *testing.T) {
	records, err := Parse(KindCSV, []byte("property_code,city\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestParseEmptyFileHasNoHeader(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		data []byte
	}{
		{"empty csv", KindCSV, nil},
		{"blank csv", KindCSV, []byte("\n\n")},
		{"empty json", KindJSON, []byte("")},
		{"empty workbook", KindXLSX, buildWorkbook(t, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.kind, tt.data); !errors.Is(err, ErrParse) {
				t.Errorf("error = %v, want ErrParse", err)
			}
		})
	}
}

func TestTemplateParses(t *testing.T) {
	data := Template()
	if len(data) == 0 || data[len(data)-1] == '\n' {
		t.Errorf("template should end without a newline, got %q", data)
	}

	records, err := Parse(KindCSV, data)
	if err != nil {
		t.Fatalf("parse template: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[1].Text("description") == "" {
		t.Error("last template row lost its description")
	}
}

func TestParseCSVMalformed(t *testing.T) {
	_, err := Parse(KindCSV, []byte("a,b\n\"unterminated,1\n"))
	if !errors.Is(err, ErrParse) {
		t.Errorf("error = %v, want ErrParse", err)
	}
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    int
		wantErr bool
	}{
		{"array", `[{"city":"Salem","price":4500000},{"city":"Chennai"}]`, 2, false},
		{"single object", `{"city":"Salem"}`, 1, false},
		{"empty array", `[]`, 0, false},
		{"malformed", `[{"city":`, 0, true},
		{"scalar", `42`, 0, true},
		{"empty", `   `, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Parse(KindJSON, []byte(tt.data))
			if tt.wantErr {
				if !errors.Is(err, ErrParse) {
					t.Errorf("error = %v, want ErrParse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(records) != tt.want {
				t.Errorf("got %d records, want %d", len(records), tt.want)
			}
		})
	}
}

func TestParseJSONKeepsNumbers(t *testing.T) {
	records, err := Parse(KindJSON, []byte(`[{"price":4500000,"year_built":null}]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if n, ok := records[0].Get("price").Number(); !ok || n != 4500000 {
		t.Errorf("price = %v (number=%v)", n, ok)
	}
	if !records[0].Get("year_built").IsNull() {
		t.Error("year_built should be null")
	}
}

func TestParseXLSX(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"property_code", "city", "price", "sqft"},
		{"CHN010", "Chennai", 12000000, 1500},
		{"", "", "", ""},
		{"SLM010", "Salem", 4000000, 900},
	})

	records, err := Parse(KindXLSX, data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[1].Text("property_code") != "SLM010" || records[1].Text("price") != "4000000" {
		t.Errorf("unexpected second record: %v", records[1])
	}
}

func TestParseXLSXGarbage(t *testing.T) {
	if _, err := Parse(KindXLSX, []byte("not a zip")); !errors.Is(err, ErrParse) {
		t.Errorf("error = %v, want ErrParse", err)
	}
}

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			t.Errorf("close workbook: %v", err)
		}
	}()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

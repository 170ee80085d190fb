package ingest

import _ "embed"

// TemplateFilename is the download name of the sample upload file.
const TemplateFilename = "property_template.csv"

//go:embed property_template.csv
var templateCSV []byte

// Template returns the sample CSV showing the expected upload columns.
func Template() []byte {
	out := make([]byte, len(templateCSV))
	copy(out, templateCSV)
	return out
}

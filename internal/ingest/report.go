package ingest

import (
	"github.com/evcraddock/estatebi/internal/preprocess"
	"github.com/evcraddock/estatebi/internal/upload"
)

// MaxReportedErrors caps the row errors included in a BatchReport response.
const MaxReportedErrors = 10

// SuccessMessage is the message attached to every completed batch.
const SuccessMessage = "File processed successfully"

// RowError explains why one row was not stored. Errors holds validation
// messages; Error holds a persistence failure.
type RowError struct {
	Line   int                  `json:"line"`
	Row    preprocess.RawRecord `json:"row"`
	Errors []string             `json:"errors,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// BatchReport summarizes one ingestion call.
type BatchReport struct {
	BatchID   string        `json:"batch_id"`
	Message   string        `json:"message"`
	Filename  string        `json:"filename"`
	Total     int           `json:"total"`
	Processed int           `json:"processed"`
	Failed    int           `json:"failed"`
	Status    upload.Status `json:"status"`
	Errors    []RowError    `json:"errors"`

	all []RowError
}

// AllErrors returns every row error, including those beyond MaxReportedErrors.
func (r *BatchReport) AllErrors() []RowError {
	return r.all
}

func (r *BatchReport) fail(e RowError) {
	r.Failed++
	r.all = append(r.all, e)
	if len(r.Errors) < MaxReportedErrors {
		r.Errors = append(r.Errors, e)
	}
}

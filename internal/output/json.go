package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bgricker/testreport/internal/report"
	"github.com/bgricker/testreport/internal/schema"
)

// JSONRenderer emits the structured report artifact.
type JSONRenderer struct {
	out io.Writer
}

// NewJSON creates a JSON renderer writing to out.
func NewJSON(out io.Writer) *JSONRenderer {
	return &JSONRenderer{out: out}
}

// Document is the JSON artifact: the report model plus its derived summary.
type Document struct {
	*report.Report
	Summary report.Summary `json:"summary"`
}

// NewDocument pairs r with its summary.
func NewDocument(r *report.Report) Document {
	return Document{Report: r, Summary: report.Summarize(r)}
}

// Render encodes the report as indented JSON.
func (j *JSONRenderer) Render(r *report.Report) error {
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(r))
}

// DecodeJSON validates a JSON artifact against the report schema and decodes
// it. The summary is derived data and is recomputed rather than read back.
// The returned report is frozen.
func DecodeJSON(in io.Reader) (*report.Report, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	if err := schema.ValidateReport(data); err != nil {
		return nil, err
	}
	var r report.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	r.Freeze()
	return &r, nil
}

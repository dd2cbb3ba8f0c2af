package reporting

import (
	"io"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// jsonEnvelope is the top-level document of the JSON report.
type jsonEnvelope struct {
	RunID       string    `json:"run_id"`
	Tool        string    `json:"tool"`
	GeneratedAt time.Time `json:"generated_at"`
	Findings    []Finding `json:"findings"`
}

// JSONReporter buffers findings and writes one envelope on Close.
type JSONReporter struct {
	writer   io.WriteCloser
	findings []Finding
}

// NewJSONReporter takes ownership of the writer.
func NewJSONReporter(w io.WriteCloser) *JSONReporter {
	return &JSONReporter{writer: w, findings: []Finding{}}
}

func (r *JSONReporter) Write(f Finding) error {
	r.findings = append(r.findings, f)
	return nil
}

func (r *JSONReporter) Close() error {
	envelope := jsonEnvelope{
		RunID:       uuid.NewString(),
		Tool:        "wflint",
		GeneratedAt: time.Now().UTC(),
		Findings:    r.findings,
	}

	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(envelope); err != nil {
		r.writer.Close()
		return err
	}
	return r.writer.Close()
}

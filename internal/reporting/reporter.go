// Package reporting converts engine diagnostics into findings and writes
// them in the supported output formats.
package reporting

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/google/uuid"

	"github.com/wflint-dev/wflint/internal/engine"
)

// Finding is one reported defect, flattened for output.
type Finding struct {
	ID      string `json:"id"`
	RuleID  string `json:"rule_id"`
	Message string `json:"message"`
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Snippet string `json:"snippet,omitempty"`
	// RootLine and RootSnippet locate the traced-back root cause when it
	// differs from the flagged site.
	RootLine    int    `json:"root_line,omitempty"`
	RootSnippet string `json:"root_snippet,omitempty"`
}

// Reporter writes findings to an output.
type Reporter interface {
	// Write records a single finding.
	Write(f Finding) error
	// Close finalizes the report and releases the underlying writer.
	Close() error
}

// FromDiagnostics renders a unit's diagnostics into findings using the
// published message catalog.
func FromDiagnostics(catalog map[engine.Classification]string, diags []engine.Diagnostic) []Finding {
	findings := make([]Finding, 0, len(diags))
	for _, d := range diags {
		f := Finding{
			ID:      uuid.NewString(),
			RuleID:  string(d.Classification),
			Message: engine.RenderMessage(catalog, d),
			File:    d.Location.File,
			Line:    d.Location.Line,
			Column:  d.Location.Column,
			Snippet: d.Location.Snippet,
		}
		if d.Root != nil {
			f.RootLine = d.Root.Line
			f.RootSnippet = d.Root.Snippet
		}
		findings = append(findings, f)
	}
	return findings
}

// Sort orders findings by file, line, column and rule so output is
// stable regardless of analysis concurrency.
func Sort(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.RuleID < b.RuleID
	})
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// New creates a reporter for the given format writing to outputPath, or
// stdout when outputPath is empty or "stdout".
func New(format, outputPath string) (Reporter, error) {
	var writer io.WriteCloser
	if outputPath == "" || outputPath == "stdout" {
		writer = nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	switch format {
	case "text":
		return NewTextReporter(writer), nil
	case "json":
		return NewJSONReporter(writer), nil
	case "checkstyle":
		return NewCheckstyleReporter(writer), nil
	default:
		writer.Close()
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

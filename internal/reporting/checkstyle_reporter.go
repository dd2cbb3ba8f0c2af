package reporting

import (
	"fmt"
	"io"
	"sort"

	"github.com/beevik/etree"
)

// CheckstyleReporter emits the checkstyle XML format understood by most
// CI annotators. Findings are buffered per file and written on Close.
type CheckstyleReporter struct {
	writer io.WriteCloser
	byFile map[string][]Finding
}

// NewCheckstyleReporter takes ownership of the writer.
func NewCheckstyleReporter(w io.WriteCloser) *CheckstyleReporter {
	return &CheckstyleReporter{writer: w, byFile: make(map[string][]Finding)}
}

func (r *CheckstyleReporter) Write(f Finding) error {
	r.byFile[f.File] = append(r.byFile[f.File], f)
	return nil
}

func (r *CheckstyleReporter) Close() error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("checkstyle")
	root.CreateAttr("version", "4.3")

	files := make([]string, 0, len(r.byFile))
	for file := range r.byFile {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		fileEl := root.CreateElement("file")
		fileEl.CreateAttr("name", file)
		for _, f := range r.byFile[file] {
			errEl := fileEl.CreateElement("error")
			errEl.CreateAttr("line", fmt.Sprintf("%d", f.Line))
			errEl.CreateAttr("column", fmt.Sprintf("%d", f.Column))
			errEl.CreateAttr("severity", severityFor(f.RuleID))
			errEl.CreateAttr("message", f.Message)
			errEl.CreateAttr("source", "wflint."+f.RuleID)
		}
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(r.writer); err != nil {
		r.writer.Close()
		return err
	}
	return r.writer.Close()
}

func severityFor(ruleID string) string {
	if ruleID == "internal-analysis-error" {
		return "warning"
	}
	return "error"
}

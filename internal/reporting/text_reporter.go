package reporting

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
)

// TextReporter writes one line per finding and a per-rule summary table
// on Close.
type TextReporter struct {
	writer  io.WriteCloser
	total   int
	byRule  map[string]int
}

// NewTextReporter takes ownership of the writer.
func NewTextReporter(w io.WriteCloser) *TextReporter {
	return &TextReporter{writer: w, byRule: make(map[string]int)}
}

func (r *TextReporter) Write(f Finding) error {
	r.total++
	r.byRule[f.RuleID]++

	if _, err := fmt.Fprintf(r.writer, "%s:%d:%d  %s  %s\n",
		f.File, f.Line, f.Column, f.RuleID, f.Message); err != nil {
		return err
	}
	if f.RootLine != 0 && f.RootSnippet != "" {
		if _, err := fmt.Fprintf(r.writer, "    root cause at line %d: %s\n",
			f.RootLine, f.RootSnippet); err != nil {
			return err
		}
	}
	return nil
}

func (r *TextReporter) Close() error {
	if r.total == 0 {
		fmt.Fprintln(r.writer, "no issues found")
		return r.writer.Close()
	}

	rules := make([]string, 0, len(r.byRule))
	for rule := range r.byRule {
		rules = append(rules, rule)
	}
	sort.Strings(rules)

	fmt.Fprintln(r.writer)
	table := tablewriter.NewWriter(r.writer)
	table.SetHeader([]string{"Rule", "Findings"})
	table.SetBorder(false)
	for _, rule := range rules {
		table.Append([]string{rule, fmt.Sprintf("%d", r.byRule[rule])})
	}
	table.SetFooter([]string{"total", fmt.Sprintf("%d", r.total)})
	table.Render()

	return r.writer.Close()
}

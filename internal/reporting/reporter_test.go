package reporting

import (
	"bytes"
	"testing"

	"github.com/beevik/etree"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wflint-dev/wflint/internal/engine"
	"github.com/wflint-dev/wflint/internal/source"
)

type memWriter struct {
	bytes.Buffer
	closed bool
}

func (m *memWriter) Close() error {
	m.closed = true
	return nil
}

func sampleFindings() []Finding {
	return []Finding{
		{
			ID:          "f-1",
			RuleID:      "sqlInjection",
			Message:     "raw query built from non-literal input",
			File:        "store.ts",
			Line:        12,
			Column:      5,
			Snippet:     "return ctxt.client.raw(q);",
			RootLine:    9,
			RootSnippet: "const q = base + input;",
		},
		{
			ID:      "f-2",
			RuleID:  "globalMutation",
			Message: "assignment to counter modifies outer state",
			File:    "flow.ts",
			Line:    4,
			Column:  3,
			Snippet: "counter = counter + 1;",
		},
	}
}

func TestFromDiagnosticsRendersMessages(t *testing.T) {
	t.Parallel()
	catalog := engine.MessageCatalog()
	rootLoc := source.Location{File: "store.ts", Line: 3, Snippet: "const q = input;"}
	diags := []engine.Diagnostic{
		{
			Classification: engine.ClassSQLInjection,
			Location:       source.Location{File: "store.ts", Line: 7, Column: 3, Snippet: "db.raw(q)"},
			Root:           &rootLoc,
			Format:         map[string]string{"lineNumber": "3", "theExpression": "input"},
		},
	}

	findings := FromDiagnostics(catalog, diags)
	require.Len(t, findings, 1)
	f := findings[0]
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, "sqlInjection", f.RuleID)
	assert.Contains(t, f.Message, "line 3")
	assert.Contains(t, f.Message, "'input'")
	assert.Equal(t, 7, f.Line)
	assert.Equal(t, 3, f.RootLine)
	assert.Equal(t, "const q = input;", f.RootSnippet)
}

func TestSortOrdersByPosition(t *testing.T) {
	t.Parallel()
	findings := []Finding{
		{File: "b.ts", Line: 1},
		{File: "a.ts", Line: 9},
		{File: "a.ts", Line: 2, Column: 8},
		{File: "a.ts", Line: 2, Column: 1},
	}
	Sort(findings)
	assert.Equal(t, "a.ts", findings[0].File)
	assert.Equal(t, 2, findings[0].Line)
	assert.Equal(t, 1, findings[0].Column)
	assert.Equal(t, 8, findings[1].Column)
	assert.Equal(t, 9, findings[2].Line)
	assert.Equal(t, "b.ts", findings[3].File)
}

func TestJSONReporterEnvelope(t *testing.T) {
	t.Parallel()
	w := &memWriter{}
	r := NewJSONReporter(w)
	for _, f := range sampleFindings() {
		require.NoError(t, r.Write(f))
	}
	require.NoError(t, r.Close())
	assert.True(t, w.closed)

	var env jsonEnvelope
	require.NoError(t, jsoniter.Unmarshal(w.Bytes(), &env))
	assert.Equal(t, "wflint", env.Tool)
	assert.NotEmpty(t, env.RunID)
	require.Len(t, env.Findings, 2)
	assert.Equal(t, "sqlInjection", env.Findings[0].RuleID)
	assert.Equal(t, 9, env.Findings[0].RootLine)
}

func TestTextReporterOutput(t *testing.T) {
	t.Parallel()
	w := &memWriter{}
	r := NewTextReporter(w)
	for _, f := range sampleFindings() {
		require.NoError(t, r.Write(f))
	}
	require.NoError(t, r.Close())

	out := w.String()
	assert.Contains(t, out, "store.ts:12:5")
	assert.Contains(t, out, "sqlInjection")
	assert.Contains(t, out, "root cause at line 9")
	assert.Contains(t, out, "flow.ts:4:3")
	assert.Contains(t, out, "globalMutation")
}

func TestTextReporterEmptyRun(t *testing.T) {
	t.Parallel()
	w := &memWriter{}
	r := NewTextReporter(w)
	require.NoError(t, r.Close())
	assert.Contains(t, w.String(), "no issues found")
}

func TestCheckstyleReporterOutput(t *testing.T) {
	t.Parallel()
	w := &memWriter{}
	r := NewCheckstyleReporter(w)
	for _, f := range sampleFindings() {
		require.NoError(t, r.Write(f))
	}
	require.NoError(t, r.Close())

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(w.Bytes()))

	root := doc.SelectElement("checkstyle")
	require.NotNil(t, root)
	assert.Equal(t, "4.3", root.SelectAttrValue("version", ""))

	files := root.SelectElements("file")
	require.Len(t, files, 2)
	// Files are emitted sorted by name.
	assert.Equal(t, "flow.ts", files[0].SelectAttrValue("name", ""))
	assert.Equal(t, "store.ts", files[1].SelectAttrValue("name", ""))

	errEl := files[1].SelectElement("error")
	require.NotNil(t, errEl)
	assert.Equal(t, "12", errEl.SelectAttrValue("line", ""))
	assert.Equal(t, "error", errEl.SelectAttrValue("severity", ""))
	assert.Equal(t, "wflint.sqlInjection", errEl.SelectAttrValue("source", ""))
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	t.Parallel()
	_, err := New("sarif", "")
	assert.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	t.Parallel()
	path := t.TempDir() + "/report.json"
	r, err := New("json", path)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.FileExists(t, path)
}

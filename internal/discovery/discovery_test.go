package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testExtensions = []string{".ts", ".tsx", ".js"}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("export {};\n"), 0o644))
}

func TestSourceFilesWalksDirectories(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.ts"))
	writeFile(t, filepath.Join(dir, "src", "store.tsx"))
	writeFile(t, filepath.Join(dir, "src", "util.js"))
	writeFile(t, filepath.Join(dir, "README.md"))

	files, err := SourceFiles([]string{dir}, testExtensions)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "app.ts"),
		filepath.Join(dir, "src", "store.tsx"),
		filepath.Join(dir, "src", "util.js"),
	}, files)
}

func TestSourceFilesSkipsDependencyAndHiddenDirs(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.ts"))
	writeFile(t, filepath.Join(dir, "node_modules", "pkg", "index.ts"))
	writeFile(t, filepath.Join(dir, "dist", "app.ts"))
	writeFile(t, filepath.Join(dir, ".cache", "tmp.ts"))

	files, err := SourceFiles([]string{dir}, testExtensions)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "app.ts")}, files)
}

func TestSourceFilesSkipsDeclarationFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "types.d.ts"))
	writeFile(t, filepath.Join(dir, "main.ts"))

	files, err := SourceFiles([]string{dir}, testExtensions)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "main.ts")}, files)
}

func TestSourceFilesAcceptsExplicitFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "one.ts")
	writeFile(t, path)

	// An explicitly named file is accepted as-is, and only once.
	files, err := SourceFiles([]string{path, path}, testExtensions)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestSourceFilesMissingPath(t *testing.T) {
	t.Parallel()
	_, err := SourceFiles([]string{filepath.Join(t.TempDir(), "absent")}, testExtensions)
	assert.Error(t, err)
}

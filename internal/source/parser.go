// Package source wraps tree-sitter parsing of TypeScript and JavaScript
// compilation units and provides the node helpers the analysis engine
// builds on.
package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// File is one parsed compilation unit. The engine never mutates the tree;
// Close must be called when analysis of the unit is finished.
type File struct {
	Path   string
	Source []byte
	Tree   *sitter.Tree
	Root   *sitter.Node
}

// Close releases the underlying tree-sitter tree.
func (f *File) Close() {
	if f.Tree != nil {
		f.Tree.Close()
		f.Tree = nil
	}
}

// languageFor selects a grammar from the file extension. TypeScript is the
// primary target; plain JavaScript units are analyzed with the JS grammar.
func languageFor(path string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx":
		return tsx.GetLanguage()
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// Parse parses one compilation unit. A tree with syntax errors is still
// returned: the engine analyzes what tree-sitter recovered.
func Parse(ctx context.Context, path string, content []byte) (*File, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(languageFor(path))

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter failed to parse %s: %w", path, err)
	}

	root := tree.RootNode()
	if root == nil {
		tree.Close()
		return nil, fmt.Errorf("tree-sitter returned no root node for %s", path)
	}

	return &File{
		Path:   path,
		Source: content,
		Tree:   tree,
		Root:   root,
	}, nil
}

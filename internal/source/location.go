package source

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Location holds the position and snippet of a node for reporting.
type Location struct {
	File    string
	Line    int
	Column  int
	Snippet string
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// LocationOf converts a node position to a Location. The snippet is the
// full source line containing the node start, trimmed.
func LocationOf(f *File, node *sitter.Node) Location {
	if node == nil {
		return Location{File: f.Path}
	}

	start := int(node.StartByte())
	snippet := Text(node, f.Source)
	if start <= len(f.Source) {
		lineStart := lineStartBefore(f.Source, start)
		lineEnd := lineEndAfter(f.Source, start)
		if lineStart >= 0 && lineEnd > lineStart {
			snippet = strings.TrimSpace(string(f.Source[lineStart:lineEnd]))
		}
	}

	point := node.StartPoint()
	return Location{
		File:    f.Path,
		Line:    int(point.Row) + 1,
		Column:  int(point.Column) + 1,
		Snippet: snippet,
	}
}

func lineStartBefore(src []byte, idx int) int {
	if len(src) == 0 {
		return 0
	}
	if idx >= len(src) {
		idx = len(src) - 1
	}
	for i := idx; i >= 0; i-- {
		if src[i] == '\n' {
			return i + 1
		}
	}
	return 0
}

func lineEndAfter(src []byte, idx int) int {
	for i := idx; i < len(src); i++ {
		if src[i] == '\n' {
			return i
		}
	}
	return len(src)
}

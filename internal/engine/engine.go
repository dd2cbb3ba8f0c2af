package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wflint-dev/wflint/internal/oracle"
	"github.com/wflint-dev/wflint/internal/source"
)

// Context carries everything one unit's analysis needs. It is built at
// the start of Analyze and discarded at the end; no analysis state is
// shared across units, so independent units can be analyzed concurrently.
type Context struct {
	File   *source.File
	Oracle oracle.TypeOracle
	Sink   Sink
	Logger *zap.Logger
}

// Engine runs the determinism and injection analysis over parsed units.
type Engine struct {
	logger *zap.Logger
}

// New creates an analysis engine.
func New(logger *zap.Logger) *Engine {
	return &Engine{logger: logger.Named("engine")}
}

// Analyze walks one compilation unit and reports every diagnostic to the
// sink. The unit is processed synchronously to completion; detector
// failures on individual nodes degrade to internal-analysis-error
// diagnostics and never abort traversal of sibling subtrees.
func (e *Engine) Analyze(file *source.File, orc oracle.TypeOracle, sink Sink) error {
	if file == nil || file.Root == nil {
		return fmt.Errorf("analyze: nil compilation unit")
	}
	if orc == nil {
		return fmt.Errorf("analyze %s: no type oracle bound", file.Path)
	}

	ctx := &Context{
		File:   file,
		Oracle: orc,
		Sink:   sink,
		Logger: e.logger.With(zap.String("file", file.Path)),
	}

	// Module-level script code gets its own scope stack; raw-query call
	// sites are checked there too, while the annotation-gated detectors
	// stay off until a decorated function is entered.
	w := newWalker(ctx, AnnotationNone)
	w.scopes.push()
	defer w.scopes.pop()
	w.walk(file.Root)
	return nil
}

// AnalyzeSource is a convenience for hosts holding raw content: it
// parses, binds and analyzes in one call, returning the collected
// diagnostics in traversal order.
func (e *Engine) AnalyzeSource(ctx context.Context, path string, content []byte) ([]Diagnostic, error) {
	file, err := source.Parse(ctx, path, content)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var diags []Diagnostic
	sink := SinkFunc(func(d Diagnostic) {
		// The tree is released before this function returns; the node
		// pointer must not outlive it.
		d.Node = nil
		diags = append(diags, d)
	})
	if err := e.Analyze(file, oracle.Bind(file, e.logger), sink); err != nil {
		return nil, err
	}
	return diags, nil
}

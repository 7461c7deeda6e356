// Package analyzer is the boundary to the external call-graph constructor.
// The construction algorithm itself (WALA) is a black box: given a
// classpath it returns method nodes and call edges, which this package
// decodes into the raw graph model.
package analyzer

import (
	"context"
	"fmt"

	"github.com/fastenhq/javacg/internal/callgraph"
)

// Analyzer builds a raw call graph for a classpath. Implementations block
// until construction finishes; cancellation and timeouts belong to the
// implementation or the passed context, not to callers.
type Analyzer interface {
	Analyze(ctx context.Context, classpath string) (*callgraph.RawGraph, error)
}

// Error reports an unrecoverable construction failure from the external
// analyzer: timeouts, cancellation, corrupt class files. A failed run never
// yields a partial graph.
type Error struct {
	Classpath string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("call-graph construction failed for %s: %v", e.Classpath, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

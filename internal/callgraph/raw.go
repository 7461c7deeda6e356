// Package callgraph holds the call-graph data model: the raw graph handed
// over by the external analyzer, the partial call graph accumulated during
// translation, and the revision call graph document that is serialized.
package callgraph

import (
	"fmt"

	"github.com/fastenhq/javacg/internal/uri"
)

// CallKind is the invocation instruction kind recorded on a call site.
type CallKind string

const (
	KindVirtual   CallKind = "invokevirtual"
	KindSpecial   CallKind = "invokespecial"
	KindStatic    CallKind = "invokestatic"
	KindInterface CallKind = "invokeinterface"
)

// Node is one method in the raw graph. Internal marks methods declared by
// the analyzed artifact; everything else belongs to a dependency or the
// runtime library.
type Node struct {
	Signature uri.MethodURI
	Internal  bool
}

// Edge is a directed call site between two nodes, by index into RawGraph.Nodes.
type Edge struct {
	Caller int
	Callee int
	Kind   CallKind
}

// Supertypes carries the superclass and interface URIs the analyzer reported
// for one type, when it reported any.
type Supertypes struct {
	Superclasses []string
	Interfaces   []string
}

// RawGraph is the analyzer's output as the translator consumes it.
type RawGraph struct {
	Nodes []Node
	Edges []Edge

	// Supertypes maps type URI to reported supertype URIs. May be nil.
	Supertypes map[string]Supertypes
}

func (g *RawGraph) checkEdge(e Edge) error {
	if e.Caller < 0 || e.Caller >= len(g.Nodes) {
		return fmt.Errorf("edge caller index %d out of range", e.Caller)
	}
	if e.Callee < 0 || e.Callee >= len(g.Nodes) {
		return fmt.Errorf("edge callee index %d out of range", e.Callee)
	}
	return nil
}

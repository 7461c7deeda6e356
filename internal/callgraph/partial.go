package callgraph

import (
	"github.com/fastenhq/javacg/internal/uri"
)

// Type is one class-hierarchy entry: the methods observed for a type, keyed
// by their locally assigned IDs, plus supertype URIs when the analyzer
// reported them.
type Type struct {
	Methods      map[int]string `json:"methods"`
	Superclasses []string       `json:"superclasses,omitempty"`
	Interfaces   []string       `json:"interfaces,omitempty"`

	next int
}

// ExternalKey identifies one (caller, external callee) pair.
type ExternalKey struct {
	Caller int
	Callee string
}

// PartialCallGraph accumulates deduplicated calls for one artifact. It is
// built by a single translation pass and read-only afterwards; no locking.
type PartialCallGraph struct {
	hierarchy map[string]*Type
	internal  [][2]int
	seen      map[[2]int]bool
	external  map[ExternalKey]map[CallKind]int
}

// NewPartialCallGraph returns an empty partial call graph.
func NewPartialCallGraph() *PartialCallGraph {
	return &PartialCallGraph{
		hierarchy: make(map[string]*Type),
		seen:      make(map[[2]int]bool),
		external:  make(map[ExternalKey]map[CallKind]int),
	}
}

// AddMethod registers a method under its declaring type and returns its ID.
// IDs are sequential per type, assigned on first encounter; registering the
// same signature again returns the existing ID.
func (p *PartialCallGraph) AddMethod(sig uri.MethodURI) int {
	typeURI := sig.TypeURI()
	t, ok := p.hierarchy[typeURI]
	if !ok {
		t = &Type{Methods: make(map[int]string)}
		p.hierarchy[typeURI] = t
	}

	method := sig.String()
	for id, m := range t.Methods {
		if m == method {
			return id
		}
	}

	id := t.next
	t.next++
	t.Methods[id] = method
	return id
}

// SetSupertypes records superclass and interface URIs for a type already in
// the hierarchy. Unknown types are ignored.
func (p *PartialCallGraph) SetSupertypes(typeURI string, s Supertypes) {
	t, ok := p.hierarchy[typeURI]
	if !ok {
		return
	}
	t.Superclasses = s.Superclasses
	t.Interfaces = s.Interfaces
}

// AddInternalCall records a call between two artifact methods. The same
// directed pair is stored once no matter how many call sites realize it.
func (p *PartialCallGraph) AddInternalCall(caller, callee int) {
	pair := [2]int{caller, callee}
	if p.seen[pair] {
		return
	}
	p.seen[pair] = true
	p.internal = append(p.internal, pair)
}

// AddExternalCall records a call from an artifact method to an external
// target, bumping the per-kind counter for the (caller, callee) pair.
func (p *PartialCallGraph) AddExternalCall(caller int, callee uri.MethodURI, kind CallKind) {
	key := ExternalKey{Caller: caller, Callee: callee.String()}
	meta, ok := p.external[key]
	if !ok {
		meta = make(map[CallKind]int)
		p.external[key] = meta
	}
	meta[kind]++
}

// Hierarchy returns the class hierarchy keyed by type URI.
func (p *PartialCallGraph) Hierarchy() map[string]*Type {
	return p.hierarchy
}

// InternalCalls returns the deduplicated (caller, callee) pairs in insertion
// order.
func (p *PartialCallGraph) InternalCalls() [][2]int {
	return p.internal
}

// ExternalCalls returns the per-pair call-kind counters.
func (p *PartialCallGraph) ExternalCalls() map[ExternalKey]map[CallKind]int {
	return p.external
}

// IsEmpty reports whether no call of either kind was recorded. An empty
// graph is a valid result for an artifact without reachable entry points.
func (p *PartialCallGraph) IsEmpty() bool {
	return len(p.internal) == 0 && len(p.external) == 0
}

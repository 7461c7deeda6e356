package callgraph

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Forge is the package forge every revision processed here belongs to.
const Forge = "mvn"

// WildcardVersion is the sentinel for an unconstrained dependency version.
const WildcardVersion = "*"

// Constraint is one version bound pair. Real Maven range syntax is not
// supported: a pinned version has LowerBound == UpperBound, an unspecified
// version uses the wildcard sentinel on both bounds.
type Constraint struct {
	LowerBound string `json:"lowerBound"`
	UpperBound string `json:"upperBound"`
}

// Exact returns a constraint pinning a single version.
func Exact(version string) Constraint {
	return Constraint{LowerBound: version, UpperBound: version}
}

// Dependency references another product with at least one constraint.
type Dependency struct {
	Forge       string       `json:"forge"`
	Product     string       `json:"product"`
	Constraints []Constraint `json:"constraints"`
}

// DependencySet groups dependency lists, one per independently resolved POM
// scope: the root dependencies block first, then each profile that declares
// any.
type DependencySet [][]Dependency

// RevisionCallGraph is the output document for one analyzed revision. It is
// fully populated at construction, immutable afterwards, and serialized to
// JSON exactly once per artifact.
type RevisionCallGraph struct {
	Product   string
	Version   string
	Generator string
	Timestamp int64
	Depset    DependencySet
	Graph     *PartialCallGraph
}

// NewRevisionCallGraph assembles the output document for one revision.
func NewRevisionCallGraph(product, version, generator string, timestamp int64, depset DependencySet, graph *PartialCallGraph) *RevisionCallGraph {
	return &RevisionCallGraph{
		Product:   product,
		Version:   version,
		Generator: generator,
		Timestamp: timestamp,
		Depset:    depset,
		Graph:     graph,
	}
}

// IsEmpty reports whether the revision recorded no calls at all.
func (r *RevisionCallGraph) IsEmpty() bool {
	return r.Graph == nil || r.Graph.IsEmpty()
}

// graphDoc is the wire shape of the graph section. External call counters
// are serialized as strings under a "callerID,calleeURI" key.
type graphDoc struct {
	InternalCalls [][2]int                     `json:"internalCalls"`
	ExternalCalls map[string]map[string]string `json:"externalCalls"`
}

// revisionDoc is the wire shape of the whole document.
type revisionDoc struct {
	Forge     string           `json:"forge"`
	Product   string           `json:"product"`
	Version   string           `json:"version"`
	Generator string           `json:"generator"`
	Depset    DependencySet    `json:"depset"`
	CHA       map[string]*Type `json:"cha"`
	Graph     graphDoc         `json:"graph"`
	Timestamp int64            `json:"timestamp"`
}

// MarshalJSON renders the canonical revision call-graph document.
func (r *RevisionCallGraph) MarshalJSON() ([]byte, error) {
	doc := revisionDoc{
		Forge:     Forge,
		Product:   r.Product,
		Version:   r.Version,
		Generator: r.Generator,
		Depset:    r.Depset,
		Timestamp: r.Timestamp,
	}
	if doc.Depset == nil {
		doc.Depset = DependencySet{}
	}

	doc.CHA = map[string]*Type{}
	doc.Graph = graphDoc{
		InternalCalls: [][2]int{},
		ExternalCalls: map[string]map[string]string{},
	}
	if r.Graph != nil {
		doc.CHA = r.Graph.Hierarchy()
		if calls := r.Graph.InternalCalls(); calls != nil {
			doc.Graph.InternalCalls = calls
		}
		for key, meta := range r.Graph.ExternalCalls() {
			counts := make(map[string]string, len(meta))
			for kind, n := range meta {
				counts[string(kind)] = strconv.Itoa(n)
			}
			doc.Graph.ExternalCalls[fmt.Sprintf("%d,%s", key.Caller, key.Callee)] = counts
		}
	}

	return json.Marshal(doc)
}

// FileName is the output naming convention surfaced to callers:
// <artifactId>_<groupId>_<version>.json. The product must be of the form
// groupId:artifactId.
func (r *RevisionCallGraph) FileName() (string, error) {
	groupID, artifactID, ok := strings.Cut(r.Product, ":")
	if !ok || groupID == "" || artifactID == "" {
		return "", fmt.Errorf("malformed product %q", r.Product)
	}
	return fmt.Sprintf("%s_%s_%s.json", artifactID, groupID, r.Version), nil
}

package callgraph

import "fmt"

// Translate walks the analyzer's raw graph and produces the partial call
// graph. Method IDs are assigned per declaring type in node order, so the
// output is stable for a given raw graph regardless of how many call sites
// realize each edge. Edges whose caller is not an artifact method are
// dropped; calls made purely between library methods are not recorded.
func Translate(raw *RawGraph) (*PartialCallGraph, error) {
	pcg := NewPartialCallGraph()

	ids := make([]int, len(raw.Nodes))
	for i, n := range raw.Nodes {
		if n.Internal {
			ids[i] = pcg.AddMethod(n.Signature)
		} else {
			ids[i] = -1
		}
	}

	for _, e := range raw.Edges {
		if err := raw.checkEdge(e); err != nil {
			return nil, fmt.Errorf("malformed raw graph: %w", err)
		}
		caller := raw.Nodes[e.Caller]
		if !caller.Internal {
			continue
		}
		callee := raw.Nodes[e.Callee]
		if callee.Internal {
			pcg.AddInternalCall(ids[e.Caller], ids[e.Callee])
		} else {
			pcg.AddExternalCall(ids[e.Caller], callee.Signature, e.Kind)
		}
	}

	for typeURI, supers := range raw.Supertypes {
		pcg.SetSupertypes(typeURI, supers)
	}

	return pcg, nil
}

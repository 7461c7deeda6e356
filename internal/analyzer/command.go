package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog/log"

	"github.com/fastenhq/javacg/internal/callgraph"
	"github.com/fastenhq/javacg/internal/uri"
)

// graphDoc is the wire shape the runner prints on stdout.
type graphDoc struct {
	Nodes []nodeDoc          `json:"nodes"`
	Edges []edgeDoc          `json:"edges"`
	Types map[string]typeDoc `json:"types,omitempty"`
}

type nodeDoc struct {
	Namespace  string   `json:"namespace"`
	Type       string   `json:"type"`
	Method     string   `json:"method"`
	Parameters []string `json:"parameters,omitempty"`
	Return     string   `json:"return"`
	Internal   bool     `json:"internal"`
}

type edgeDoc struct {
	Source int    `json:"source"`
	Target int    `json:"target"`
	Kind   string `json:"kind"`
}

type typeDoc struct {
	Superclasses []string `json:"superclasses,omitempty"`
	Interfaces   []string `json:"interfaces,omitempty"`
}

// CommandAnalyzer invokes an external runner (typically a WALA wrapper) as
// a subprocess, passing the classpath as the final argument and decoding
// the JSON graph it prints on stdout.
type CommandAnalyzer struct {
	Command string
	Args    []string
}

// NewCommandAnalyzer builds an analyzer around the given runner command.
func NewCommandAnalyzer(command string, args ...string) *CommandAnalyzer {
	return &CommandAnalyzer{Command: command, Args: args}
}

// Analyze runs the external constructor over the classpath.
func (a *CommandAnalyzer) Analyze(ctx context.Context, classpath string) (*callgraph.RawGraph, error) {
	args := append(append([]string{}, a.Args...), classpath)

	log.Debug().
		Str("command", a.Command).
		Strs("args", args).
		Msg("running call-graph constructor")

	cmd := exec.CommandContext(ctx, a.Command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := stderr.String(); msg != "" {
			log.Error().Str("stderr", msg).Msg("call-graph constructor failed")
		}
		return nil, &Error{Classpath: classpath, Err: err}
	}

	raw, err := decodeGraph(stdout.Bytes())
	if err != nil {
		return nil, &Error{Classpath: classpath, Err: err}
	}
	return raw, nil
}

// decodeGraph converts the runner's wire format into the raw graph model.
func decodeGraph(data []byte) (*callgraph.RawGraph, error) {
	var doc graphDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("undecodable graph output: %w", err)
	}

	raw := &callgraph.RawGraph{}
	for i, n := range doc.Nodes {
		sig := uri.MethodURI{
			Namespace: n.Namespace,
			TypeName:  n.Type,
			Method:    n.Method,
		}
		for _, p := range n.Parameters {
			t, err := uri.ParseType(p)
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
			sig.Params = append(sig.Params, t)
		}
		ret, err := uri.ParseType(n.Return)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		sig.Return = ret
		if err := sig.Validate(); err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		raw.Nodes = append(raw.Nodes, callgraph.Node{Signature: sig, Internal: n.Internal})
	}

	for i, e := range doc.Edges {
		kind := callgraph.CallKind(e.Kind)
		switch kind {
		case callgraph.KindVirtual, callgraph.KindSpecial, callgraph.KindStatic, callgraph.KindInterface:
		default:
			return nil, fmt.Errorf("edge %d: unknown call kind %q", i, e.Kind)
		}
		raw.Edges = append(raw.Edges, callgraph.Edge{Caller: e.Source, Callee: e.Target, Kind: kind})
	}

	if len(doc.Types) > 0 {
		raw.Supertypes = make(map[string]callgraph.Supertypes, len(doc.Types))
		for typeURI, t := range doc.Types {
			raw.Supertypes[typeURI] = callgraph.Supertypes{
				Superclasses: t.Superclasses,
				Interfaces:   t.Interfaces,
			}
		}
	}

	return raw, nil
}

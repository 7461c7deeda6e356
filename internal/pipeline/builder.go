package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/fastenhq/javacg/internal/analyzer"
	"github.com/fastenhq/javacg/internal/callgraph"
	"github.com/fastenhq/javacg/internal/maven"
)

// Generator is the name recorded on every revision call graph.
const Generator = "WALA"

// Builder produces revision call graphs, one artifact at a time.
type Builder struct {
	resolver *maven.Resolver
	analyzer analyzer.Analyzer
}

// NewBuilder wires a resolver and an analyzer into a builder.
func NewBuilder(resolver *maven.Resolver, an analyzer.Analyzer) *Builder {
	return &Builder{resolver: resolver, analyzer: an}
}

// FromCoordinate resolves the coordinate, analyzes its JAR and returns the
// completed revision call graph. A failed dependency resolution degrades to
// an empty depset with a warning; a missing JAR is fatal. The returned
// error is always a *Failure.
func (b *Builder) FromCoordinate(ctx context.Context, coord maven.Coordinate, timestamp int64) (*callgraph.RevisionCallGraph, error) {
	depset, err := b.resolver.Dependencies(ctx, coord)
	if err != nil {
		log.Warn().Err(err).Str("coordinate", coord.String()).Msg("dependency resolution failed, continuing with empty depset")
		depset = nil
	}

	jar, err := b.resolver.DownloadJar(ctx, coord)
	if err != nil {
		kind := FailureInternal
		if errors.Is(err, maven.ErrNotFound) {
			kind = FailureNotFound
		}
		return nil, failure(kind, coord.String(), err)
	}
	defer os.Remove(jar)

	rcg, err := b.fromClasspath(ctx, jar, coord.Product(), coord.Version, timestamp, depset)
	if err != nil {
		return nil, failure(FailureAnalysis, coord.String(), err)
	}
	return rcg, nil
}

// FromFile analyzes a local JAR with a pre-resolved dependency set.
func (b *Builder) FromFile(ctx context.Context, path, product, version string, timestamp int64, depset callgraph.DependencySet) (*callgraph.RevisionCallGraph, error) {
	rcg, err := b.fromClasspath(ctx, path, product, version, timestamp, depset)
	if err != nil {
		return nil, failure(FailureAnalysis, product+":"+version, err)
	}
	return rcg, nil
}

func (b *Builder) fromClasspath(ctx context.Context, classpath, product, version string, timestamp int64, depset callgraph.DependencySet) (*callgraph.RevisionCallGraph, error) {
	raw, err := b.analyzer.Analyze(ctx, classpath)
	if err != nil {
		return nil, err
	}

	pcg, err := callgraph.Translate(raw)
	if err != nil {
		return nil, err
	}

	return callgraph.NewRevisionCallGraph(product, version, Generator, timestamp, depset, pcg), nil
}

// WriteRevision serializes a revision call graph into dir under the
// <artifactId>_<groupId>_<version>.json convention and returns the path.
func WriteRevision(rcg *callgraph.RevisionCallGraph, dir string) (string, error) {
	name, err := rcg.FileName()
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(rcg, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize %s: %w", rcg.Product, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

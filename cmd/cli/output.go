package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/fastenhq/javacg/internal/callgraph"
	"github.com/fastenhq/javacg/internal/pipeline"
)

// emit writes the call graph to the output directory or prints it to stdout.
func emit(rcg *callgraph.RevisionCallGraph, outputDir string, toStdout bool) error {
	if toStdout {
		data, err := json.MarshalIndent(rcg, "", "    ")
		if err != nil {
			return fmt.Errorf("failed to serialize call graph: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	path, err := pipeline.WriteRevision(rcg, outputDir)
	if err != nil {
		return err
	}

	log.Info().Str("path", path).Msg("call graph written")
	return nil
}

// readDepset loads a dependency set from a JSON file. An empty path yields nil.
func readDepset(path string) (callgraph.DependencySet, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dependency set: %w", err)
	}

	var depset callgraph.DependencySet
	if err := json.Unmarshal(data, &depset); err != nil {
		return nil, fmt.Errorf("failed to parse dependency set: %w", err)
	}

	return depset, nil
}
